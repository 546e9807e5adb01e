package gcode

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/PathOrder/internal/model"
)

var (
	// safeLiftRe matches the machine-coordinate rapid lift idiom, e.g.
	// "G53 G0 Z0" or "G0G53Z-5".
	safeLiftRe = regexp.MustCompile(`^(G53\s*G0?0|G0?0\s*G53)\s*Z\s*[-+]?(\d+\.?\d*|\.\d+)\s*$`)

	// toolRe extracts the diameter from a "(TOOL/MILL,<diameter>, ...)" annotation.
	toolRe = regexp.MustCompile(`TOOL/MILL,\s*([-+]?(\d+\.?\d*|\.\d+))`)

	// lineNumberRe matches a leading "N<digits>" block number.
	lineNumberRe = regexp.MustCompile(`^N\d+\s*`)
)

const (
	axisX = iota
	axisY
	axisZ
)

// State is the modal machine state threaded through interpretation.
type State struct {
	Pos          model.Point3
	Known        [3]bool // X, Y, Z resolved
	Feed         float64
	GLevel       int // -1 until a G0/G1 word is seen
	ToolDiameter float64
	Relative     bool // G91 distance mode
	AtSafe       bool // tool sits at the safe height after a machine-coordinate lift

	MaxZ float64
	SawZ bool
}

// NewState returns the state at program start: origin, feed 0, no motion mode.
func NewState(toolDiameter float64) State {
	return State{
		Known:        [3]bool{true, true, true},
		GLevel:       -1,
		ToolDiameter: toolDiameter,
	}
}

// Valid reports whether the absolute position is fully known.
func (s State) Valid() bool {
	return s.Known[axisX] && s.Known[axisY] && s.Known[axisZ] && !s.Relative
}

func (s *State) invalidate() {
	s.Known = [3]bool{}
	s.AtSafe = false
}

// Counters reports what the interpreter changed.
type Counters struct {
	Movements int // Raw lines promoted to movements
	SafeLifts int // Machine-coordinate lifts converted to movements
	Barriers  int
}

// Interpreter decodes raw lines against the modal state and promotes
// qualifying lines to movements in place.
type Interpreter struct {
	State    State
	Counters Counters
}

// NewInterpreter creates an interpreter whose tool diameter defaults to
// toolDiameter until the program declares one.
func NewInterpreter(toolDiameter float64) *Interpreter {
	return &Interpreter{State: NewState(toolDiameter)}
}

// Run interprets id and then its descendants depth-first in document order.
func (in *Interpreter) Run(doc *model.Document, id model.NodeID) {
	n := doc.Node(id)
	if n.Kind == model.KindRaw {
		in.line(n)
	}
	for _, c := range n.Children {
		in.Run(doc, c)
	}
}

// RetractHeight returns the highest Z coordinate seen in the program.
func (in *Interpreter) RetractHeight() (float64, bool) {
	return in.State.MaxZ, in.State.SawZ
}

func (in *Interpreter) line(n *model.Node) {
	text := strings.ToUpper(strings.TrimSpace(n.RawText))
	text = lineNumberRe.ReplaceAllString(text, "")
	if text == "" {
		return
	}

	switch text[0] {
	case 'G':
		if safeLiftRe.MatchString(text) {
			in.safeLift(n)
			return
		}
		code, rest, ok := splitGWord(text)
		if !ok {
			in.State.invalidate()
			return
		}
		switch code {
		case 0, 1:
			in.State.GLevel = code
			in.coordinates(n, rest)
		case 90:
			in.State.Relative = false
			in.State.invalidate()
		case 91:
			in.State.Relative = true
			in.State.invalidate()
		default:
			in.State.invalidate()
		}
	case 'X', 'Y', 'Z', 'F':
		if in.State.GLevel < 0 {
			in.State.invalidate()
			return
		}
		in.coordinates(n, text)
	case 'M':
		n.Barrier = true
		in.Counters.Barriers++
	case '(', ';':
		n.Barrier = true
		in.Counters.Barriers++
		if m := toolRe.FindStringSubmatch(text); m != nil {
			if d, err := strconv.ParseFloat(m[1], 64); err == nil && d >= 0 {
				in.State.ToolDiameter = d
			}
		}
	}
}

// splitGWord parses the integer code of the leading G word. Codes with a
// decimal part (G64.1) are reported as not ok.
func splitGWord(text string) (int, string, bool) {
	i := 1
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	if i == 1 || (i < len(text) && text[i] == '.') {
		return 0, "", false
	}
	code, err := strconv.Atoi(text[1:i])
	if err != nil {
		return 0, "", false
	}
	return code, text[i:], true
}

// word is one address letter with its numeric value.
type word struct {
	letter byte
	value  float64
}

// tokenize splits a line body into words. It fails on any token that is
// not a letter followed by a number.
func tokenize(s string) ([]word, bool) {
	var words []word
	i := 0
	for i < len(s) {
		c := s[i]
		if c == ' ' || c == '\t' {
			i++
			continue
		}
		if c < 'A' || c > 'Z' {
			return nil, false
		}
		j := i + 1
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
		k := j
		for k < len(s) && (s[k] == '-' || s[k] == '+' || s[k] == '.' || (s[k] >= '0' && s[k] <= '9')) {
			k++
		}
		v, err := strconv.ParseFloat(s[j:k], 64)
		if err != nil {
			return nil, false
		}
		words = append(words, word{letter: c, value: v})
		i = k
	}
	return words, true
}

// stripComment removes a trailing ';' comment and any parenthesized
// comments from a line body.
func stripComment(s string) string {
	if idx := strings.Index(s, ";"); idx >= 0 {
		s = s[:idx]
	}
	for {
		open := strings.Index(s, "(")
		if open < 0 {
			break
		}
		end := strings.Index(s[open:], ")")
		if end < 0 {
			s = s[:open]
			break
		}
		s = s[:open] + s[open+end+1:]
	}
	return s
}

// coordinates parses X/Y/Z/F words against the modal state and promotes n
// when the position was fully known before the line.
func (in *Interpreter) coordinates(n *model.Node, body string) {
	st := &in.State

	words, ok := tokenize(stripComment(body))
	if !ok {
		st.invalidate()
		return
	}

	next := st.Pos
	feed := st.Feed
	var given [3]bool
	for _, w := range words {
		switch w.letter {
		case 'X':
			next.X = w.value
			given[axisX] = true
		case 'Y':
			next.Y = w.value
			given[axisY] = true
		case 'Z':
			next.Z = w.value
			given[axisZ] = true
		case 'F':
			feed = w.value
		case 'N':
		default:
			st.invalidate()
			return
		}
	}

	if st.Relative {
		st.invalidate()
		return
	}

	wasValid := st.Valid()
	start := st.Pos
	startSafe := st.AtSafe

	st.Pos = next
	st.Feed = feed
	for axis, g := range given {
		if g {
			st.Known[axis] = true
		}
	}
	if given[axisZ] {
		st.AtSafe = false
		if !st.SawZ || next.Z > st.MaxZ {
			st.MaxZ = next.Z
			st.SawZ = true
		}
	}

	moved := given[axisX] || given[axisY] || given[axisZ]
	if !moved {
		return
	}
	if !wasValid {
		// The line stays raw, but once it resolves the position the tool
		// is known to end up at its target.
		if st.Valid() {
			n.HasTarget = true
			n.End = next
			n.GLevel = st.GLevel
		}
		return
	}

	n.Kind = model.KindMovement
	n.Start = start
	n.End = next
	n.StartElev = elevation(startSafe)
	n.EndElev = elevation(st.AtSafe)
	n.Feed = feed
	n.GLevel = st.GLevel
	n.ToolDiameter = st.ToolDiameter
	in.Counters.Movements++
}

// safeLift converts the machine-coordinate lift idiom into a vertical rapid
// ending at the (not yet resolved) safe height.
func (in *Interpreter) safeLift(n *model.Node) {
	st := &in.State
	st.GLevel = 0
	if !st.Valid() {
		return
	}

	n.Kind = model.KindMovement
	n.SafeLift = true
	n.Start = st.Pos
	n.End = st.Pos
	n.StartElev = elevation(st.AtSafe)
	n.EndElev = model.ElevationSafe
	n.Feed = st.Feed
	n.GLevel = 0
	n.ToolDiameter = st.ToolDiameter

	st.AtSafe = true
	in.Counters.SafeLifts++
}

func elevation(safe bool) model.Elevation {
	if safe {
		return model.ElevationSafe
	}
	return model.ElevationWork
}
