package gcode

import (
	"strings"
	"testing"

	"github.com/piwi3910/PathOrder/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run interprets lines and returns the root's children.
func run(t *testing.T, toolDiameter float64, lines ...string) (*model.Document, *Interpreter, []*model.Node) {
	t.Helper()
	doc, err := ReadProgram(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	in := NewInterpreter(toolDiameter)
	in.Run(doc, doc.Root())

	var nodes []*model.Node
	for _, id := range doc.Node(doc.Root()).Children {
		nodes = append(nodes, doc.Node(id))
	}
	return doc, in, nodes
}

func TestInterpreter_PromotesFromOrigin(t *testing.T) {
	_, in, nodes := run(t, 0, "G1X0Y0Z-1F100", "G0Z5", "G1X10Y0Z-1F100", "M5")

	require.Len(t, nodes, 4)
	m1 := nodes[0]
	require.True(t, m1.IsMovement())
	assert.Equal(t, model.Point3{}, m1.Start)
	assert.Equal(t, model.Point3{Z: -1}, m1.End)
	assert.Equal(t, 1, m1.GLevel)
	assert.InDelta(t, 100.0, m1.Feed, 1e-9)

	assert.True(t, nodes[1].IsRapid())
	assert.Equal(t, model.Point3{Z: -1}, nodes[1].Start)
	assert.True(t, nodes[2].IsMovement())
	assert.Equal(t, model.KindRaw, nodes[3].Kind)
	assert.True(t, nodes[3].Barrier)

	assert.Equal(t, 3, in.Counters.Movements)
	assert.Equal(t, 1, in.Counters.Barriers)
	h, ok := in.RetractHeight()
	require.True(t, ok)
	assert.InDelta(t, 5.0, h, 1e-9)
}

func TestInterpreter_Continuation(t *testing.T) {
	_, _, nodes := run(t, 0, "G1X1Y1Z-1F200", "X5", "Y6 F300", "F400")

	require.True(t, nodes[1].IsMovement())
	assert.Equal(t, model.Point3{X: 5, Y: 1, Z: -1}, nodes[1].End)
	assert.Equal(t, 1, nodes[1].GLevel)

	require.True(t, nodes[2].IsMovement())
	assert.InDelta(t, 300.0, nodes[2].Feed, 1e-9)

	assert.Equal(t, model.KindRaw, nodes[3].Kind, "feed-only line does not move")
}

func TestInterpreter_ContinuationWithoutMotionMode(t *testing.T) {
	_, in, nodes := run(t, 0, "X5Y5", "G0X1")

	assert.Equal(t, model.KindRaw, nodes[0].Kind)
	assert.Equal(t, model.KindRaw, nodes[1].Kind, "position unknown after bare continuation")
	assert.False(t, in.State.Valid())
}

func TestInterpreter_MalformedTokenInvalidates(t *testing.T) {
	_, in, nodes := run(t, 0, "G1X1Y1Z1F100", "G1X2Y#3", "G1X3", "G1X4Y4Z4")

	assert.True(t, nodes[0].IsMovement())
	assert.Equal(t, model.KindRaw, nodes[1].Kind)
	assert.Equal(t, model.KindRaw, nodes[2].Kind, "position partly unknown")
	assert.Equal(t, model.KindRaw, nodes[3].Kind, "first full position only re-establishes state")
	assert.True(t, in.State.Valid())

	_, _, more := run(t, 0, "G1X1Y1Z1F100", "G1X2Y#3", "G1X4Y4Z4", "G1X5")
	assert.True(t, more[3].IsMovement())
	assert.Equal(t, model.Point3{X: 4, Y: 4, Z: 4}, more[3].Start)
}

func TestInterpreter_OtherGCodesInvalidate(t *testing.T) {
	_, _, nodes := run(t, 0, "G1X1Y1Z1F100", "G2X5Y5I1J1", "G1X6")
	assert.Equal(t, model.KindRaw, nodes[1].Kind)
	assert.Equal(t, model.KindRaw, nodes[2].Kind)
}

func TestInterpreter_RelativeModeBlocksPromotion(t *testing.T) {
	_, in, nodes := run(t, 0, "G91", "G1X1Y1Z1F100", "G90", "G1X1Y1Z1", "G1X2")

	assert.Equal(t, model.KindRaw, nodes[1].Kind)
	assert.Equal(t, model.KindRaw, nodes[3].Kind)
	assert.True(t, nodes[4].IsMovement())
	assert.False(t, in.State.Relative)
}

func TestInterpreter_ToolAnnotation(t *testing.T) {
	_, in, nodes := run(t, 1, "G1X1Y0Z0F100", "(TOOL/MILL,6.35,0.00,0.00,0.00)", "G1X2")

	assert.InDelta(t, 1.0, nodes[0].ToolDiameter, 1e-9)
	assert.True(t, nodes[1].Barrier)
	assert.InDelta(t, 6.35, nodes[2].ToolDiameter, 1e-9)
	assert.InDelta(t, 6.35, in.State.ToolDiameter, 1e-9)
}

func TestInterpreter_SafeLift(t *testing.T) {
	_, in, nodes := run(t, 0, "G1X3Y4Z-2F100", "G53 G0 Z0", "G0X10Y10", "G1Z-2")

	lift := nodes[1]
	require.True(t, lift.IsMovement())
	assert.True(t, lift.SafeLift)
	assert.Equal(t, 0, lift.GLevel)
	assert.Equal(t, model.ElevationWork, lift.StartElev)
	assert.Equal(t, model.ElevationSafe, lift.EndElev)

	travel := nodes[2]
	require.True(t, travel.IsMovement())
	assert.Equal(t, model.ElevationSafe, travel.StartElev)
	assert.Equal(t, model.ElevationSafe, travel.EndElev)

	plunge := nodes[3]
	assert.Equal(t, model.ElevationSafe, plunge.StartElev)
	assert.Equal(t, model.ElevationWork, plunge.EndElev)
	assert.Equal(t, 1, in.Counters.SafeLifts)
}

func TestInterpreter_LineNumbersAndCase(t *testing.T) {
	_, _, nodes := run(t, 0, "n10 g01 x1 y2 z-1 f100")
	require.True(t, nodes[0].IsMovement())
	assert.Equal(t, model.Point3{X: 1, Y: 2, Z: -1}, nodes[0].End)
	assert.Equal(t, "n10 g01 x1 y2 z-1 f100", nodes[0].RawText)
}

func TestInterpreter_TrailingComment(t *testing.T) {
	_, _, nodes := run(t, 0, "G1X1Y1Z-1F100 (first cut)", "G1X2 ; along X")
	assert.True(t, nodes[0].IsMovement())
	assert.True(t, nodes[1].IsMovement())
	assert.Equal(t, model.Point3{X: 2, Y: 1, Z: -1}, nodes[1].End)
}

func TestSplitGWord(t *testing.T) {
	code, rest, ok := splitGWord("G01X5")
	require.True(t, ok)
	assert.Equal(t, 1, code)
	assert.Equal(t, "X5", rest)

	_, _, ok = splitGWord("G64.1")
	assert.False(t, ok)
	_, _, ok = splitGWord("GX")
	assert.False(t, ok)
}

func TestInterpreter_RawLineRecordsTarget(t *testing.T) {
	_, _, nodes := run(t, 0, "G21", "G0 X50 Y50", "G0 Z5", "G1 Z-1 F100")

	require.Len(t, nodes, 4)
	assert.False(t, nodes[1].IsMovement())
	assert.False(t, nodes[1].HasTarget, "Z is still unknown")

	lift := nodes[2]
	assert.False(t, lift.IsMovement(), "start position was unknown")
	require.True(t, lift.HasTarget)
	assert.Equal(t, model.Point3{X: 50, Y: 50, Z: 5}, lift.End)
	assert.Equal(t, 0, lift.GLevel)
	assert.True(t, lift.MovesTool())

	plunge := nodes[3]
	require.True(t, plunge.IsMovement())
	assert.Equal(t, lift.End, plunge.Start)
	assert.False(t, plunge.HasTarget)
}

func TestInterpreter_RelativeModeRecordsNoTarget(t *testing.T) {
	_, _, nodes := run(t, 0, "G91", "G0 X1 Y1 Z1")
	assert.False(t, nodes[1].HasTarget)
	assert.False(t, nodes[1].MovesTool())
}
