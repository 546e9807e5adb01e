package engine

import (
	"strings"
	"testing"

	"github.com/piwi3910/PathOrder/internal/gcode"
	"github.com/piwi3910/PathOrder/internal/model"
	"github.com/stretchr/testify/require"
)

// program builds a document from G-code lines.
func program(t *testing.T, lines ...string) *model.Document {
	t.Helper()
	doc, err := gcode.ReadProgram(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	return doc
}

// interpret runs the interpreter and resolves safe lifts, returning the
// retract height.
func interpret(doc *model.Document) float64 {
	interp := gcode.NewInterpreter(0)
	interp.Run(doc, doc.Root())
	h, _ := interp.RetractHeight()
	ResolveSafeElevation(doc, doc.Root(), h)
	return h
}

// prepare runs every pass up to and including dependency building.
func prepare(t *testing.T, doc *model.Document) {
	t.Helper()
	h := interpret(doc)
	AggregateBounds(doc, doc.Root())
	Classify(doc, doc.Root(), h)
	_, err := SplitCuts(doc, doc.Root())
	require.NoError(t, err)
	AggregateBounds(doc, doc.Root())
	_, err = BuildDependencies(doc, doc.Root(), 0, nil)
	require.NoError(t, err)
}

// names returns container names, or raw text for other nodes.
func names(doc *model.Document, ids []model.NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		n := doc.Node(id)
		if n.IsContainer() {
			out = append(out, n.Name)
		} else {
			out = append(out, n.RawText)
		}
	}
	return out
}

// childNamed finds the direct child container of parent with the given name.
func childNamed(t *testing.T, doc *model.Document, parent model.NodeID, name string) *model.Node {
	t.Helper()
	for _, id := range doc.Node(parent).Children {
		if n := doc.Node(id); n.IsContainer() && n.Name == name {
			return n
		}
	}
	require.Failf(t, "container not found", "no child %q", name)
	return nil
}

// recordingSink collects emission events without writing text.
type recordingSink struct {
	emitted []model.NodeID
	closed  []model.NodeID
}

func (s *recordingSink) Emit(_ *model.Document, id model.NodeID) error {
	s.emitted = append(s.emitted, id)
	return nil
}

func (s *recordingSink) Close(_ *model.Document, id model.NodeID) error {
	s.closed = append(s.closed, id)
	return nil
}

// scenarioLines plunges, retracts, repositions and stops the spindle.
var scenarioLines = []string{
	"G1X0Y0Z-1F100",
	"G0Z5",
	"G1X10Y0Z-1F100",
	"M5",
}

// farThenNearPockets cuts a pocket far from the origin before one close to it.
var farThenNearPockets = []string{
	"G0Z5",
	"G0X100Y100", "G1Z-1F100", "G1X110", "G1Y110", "G1X100", "G1Y100", "G0Z5",
	"G0X10Y10", "G1Z-1F100", "G1X20", "G1Y20", "G1X10", "G1Y10", "G0Z5",
}

// leadInFromUnknownPosition resets modal state, moves to a known point with
// a line that stays raw, and cuts there before the first retract. The second
// pocket is much closer to the origin.
var leadInFromUnknownPosition = []string{
	"G21", "G0 X50 Y50 Z5",
	"G1 Z-1 F100", "G1 X55", "G0 Z5",
	"G0 X3 Y3", "G1 Z-1 F100", "G1 X5", "G0 Z5",
}

// overlappingPockets cuts pocket A, then pocket B which overlaps A and has
// an entry point closer to the origin.
var overlappingPockets = []string{
	"G0Z5",
	"G0X110Y110", "G1Z-1F100", "G1X100", "G1Y100", "G1X110", "G1Y110", "G0Z5",
	"G0X105Y105", "G1Z-1F100", "G1X95", "G1Y95", "G1X105", "G1Y105", "G0Z5",
}
