package gcode

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/piwi3910/PathOrder/internal/model"
)

// motionState is the last emitted value of each modal word, already
// formatted. An empty string means unknown.
type motionState struct {
	g, x, y, z, f string
}

// Emitter writes nodes as G-code text. Movements are written with only the
// words that changed since the previous emitted motion.
type Emitter struct {
	w       io.Writer
	profile model.OutputProfile
	markers bool
	last    motionState
	lines   int
}

// NewEmitter creates an emitter writing to w in the given profile. When
// markers is set, a closing comment follows every non-root container.
func NewEmitter(w io.Writer, profile model.OutputProfile, markers bool) *Emitter {
	return &Emitter{w: w, profile: profile, markers: markers}
}

// Lines returns the number of lines written so far.
func (e *Emitter) Lines() int { return e.lines }

// Emit writes a raw or movement node. Containers produce no text here.
func (e *Emitter) Emit(doc *model.Document, id model.NodeID) error {
	n := doc.Node(id)
	switch n.Kind {
	case model.KindRaw:
		if changesMotion(n.RawText) {
			e.last = motionState{}
		}
		return e.writeLine(n.RawText)
	case model.KindMovement:
		return e.writeMovement(n)
	}
	return nil
}

// Close writes the closing marker of a container.
func (e *Emitter) Close(doc *model.Document, id model.NodeID) error {
	n := doc.Node(id)
	if !e.markers || n.Parent == model.NoNode {
		return nil
	}
	return e.writeLine(e.comment("end " + n.Name))
}

func (e *Emitter) writeMovement(n *model.Node) error {
	if n.SafeLift {
		e.last.g = "0"
		e.last.z = e.format(n.End.Z)
		return e.writeLine(n.RawText)
	}

	var words []string
	if g := strconv.Itoa(n.GLevel); g != e.last.g {
		words = append(words, "G"+g)
		e.last.g = g
	}
	if x := e.format(n.End.X); x != e.last.x {
		words = append(words, "X"+x)
		e.last.x = x
	}
	if y := e.format(n.End.Y); y != e.last.y {
		words = append(words, "Y"+y)
		e.last.y = y
	}
	if z := e.format(n.End.Z); z != e.last.z {
		words = append(words, "Z"+z)
		e.last.z = z
	}
	if !n.IsRapid() {
		if f := e.format(n.Feed); f != e.last.f {
			words = append(words, "F"+f)
			e.last.f = f
		}
	}
	if len(words) == 0 {
		return nil
	}
	return e.writeLine(strings.Join(words, e.profile.WordSeparator))
}

func (e *Emitter) writeLine(s string) error {
	if _, err := io.WriteString(e.w, s+"\n"); err != nil {
		return fmt.Errorf("failed to write output line %d: %w", e.lines+1, err)
	}
	e.lines++
	return nil
}

// comment wraps text in the profile's comment syntax.
func (e *Emitter) comment(text string) string {
	return e.profile.CommentPrefix + text + e.profile.CommentSuffix
}

// format formats a coordinate with the profile's decimal places, trimming
// trailing zeros.
func (e *Emitter) format(v float64) string {
	return FormatNumber(v, e.profile.DecimalPlaces)
}

// FormatNumber renders v with at most places decimals and no trailing zeros.
func FormatNumber(v float64, places int) string {
	s := strconv.FormatFloat(v, 'f', places, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// changesMotion reports whether a pass-through line may alter the modal
// motion state, so the emitter can no longer omit words.
func changesMotion(text string) bool {
	t := strings.ToUpper(strings.TrimSpace(text))
	t = lineNumberRe.ReplaceAllString(t, "")
	if t == "" {
		return false
	}
	switch t[0] {
	case 'G', 'X', 'Y', 'Z', 'F':
		return true
	}
	return false
}
