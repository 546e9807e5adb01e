package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/piwi3910/PathOrder/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, settings model.Settings, lines ...string) (string, model.Stats, *Plan) {
	t.Helper()
	doc := program(t, lines...)
	var out bytes.Buffer
	stats, plan, err := New(settings).WithLogger(quietLogger()).Compile(context.Background(), doc, &out)
	require.NoError(t, err)
	return out.String(), stats, plan
}

func TestCompile_Scenario(t *testing.T) {
	out, stats, plan := compile(t, model.DefaultSettings(), scenarioLines...)

	assert.Equal(t, "G1X0Y0Z-1F100\nG0Z5\n(end Cut path 1)\nG1X10Z-1\nM5\n", out)
	assert.Equal(t, 4, stats.LinesRead)
	assert.Equal(t, 3, stats.MovementsParsed)
	assert.Equal(t, 1, stats.Barriers)
	assert.Equal(t, 1, stats.CutPaths)
	assert.Equal(t, 3, stats.Dependencies)
	assert.InDelta(t, 5.0, stats.RetractHeight, 1e-9)
	assert.Equal(t, 3, stats.TopLevelUnits)
	assert.Zero(t, stats.VerifyViolations)
	assert.Len(t, stats.RunID, 8)
	require.NotNil(t, plan)
}

func TestCompile_RoundTripOnUntouchedInput(t *testing.T) {
	lines := []string{"%", "O1000", "(header)", "G21", "G90", "", "T1", "M3 S12000", "%"}
	out, stats, _ := compile(t, model.DefaultSettings(), lines...)

	assert.Equal(t, strings.Join(lines, "\n")+"\n", out)
	assert.Zero(t, stats.MovementsParsed)
	assert.Zero(t, stats.CutPaths)
}

func TestCompile_ReordersPocketsWithoutMarkers(t *testing.T) {
	settings := model.DefaultSettings()
	settings.ContainerMarkers = false
	settings.Profile = model.GetProfile("Grbl")
	out, stats, _ := compile(t, settings, farThenNearPockets...)

	assert.NotContains(t, out, ";end")
	near := strings.Index(out, "\nX10 Y10\n")
	far := strings.Index(out, "\nX100 Y100\n")
	require.GreaterOrEqual(t, near, 0)
	require.GreaterOrEqual(t, far, 0)
	assert.Less(t, near, far, "near pocket is emitted first")
	assert.Equal(t, 2, stats.ReorderedUnits)
	assert.Greater(t, stats.TravelSavedPercent(), 0.0)
}

func TestCompile_ConfiguredRetractHeight(t *testing.T) {
	settings := model.DefaultSettings()
	settings.RetractHeight = model.Float(20)
	_, stats, _ := compile(t, settings, scenarioLines...)

	assert.InDelta(t, 20.0, stats.RetractHeight, 1e-9)
	// G0Z5 no longer reaches the retract height, so nothing is repositioning
	// and the whole motion forms one cut path.
	assert.Equal(t, 1, stats.CutPaths)
}

func TestCompile_ZeroRetractHeight(t *testing.T) {
	settings := model.DefaultSettings()
	settings.RetractHeight = model.Float(0)
	_, stats, _ := compile(t, settings, scenarioLines...)

	assert.Zero(t, stats.RetractHeight, "highest Z in the program is 5")
	assert.Equal(t, 3, stats.MovementsParsed)
}

func TestCompile_CutPathWithoutEntryStaysInPlace(t *testing.T) {
	out, stats, plan := compile(t, model.DefaultSettings(), leadInFromUnknownPosition...)

	assert.Equal(t, "G21\nG0 X50 Y50 Z5\n"+
		"G1X50Y50Z-1F100\nX55\nG0Z5\n(end Cut path 1)\n"+
		"X3Y3\nG1Z-1\nX5\nG0Z5\n(end Cut path 2)\n", out)
	assert.Zero(t, stats.ReorderedUnits)
	assert.Zero(t, stats.FeedConnectors)
	assert.Zero(t, stats.VerifyViolations)
	require.Len(t, plan.TopLevel, 4)
	assert.NotContains(t, out, "X5\nG1X50Y50Z-1", "no feed from the second pocket into the first")
}

func TestCompile_EmptyDocument(t *testing.T) {
	var out bytes.Buffer
	stats, plan, err := New(model.DefaultSettings()).WithLogger(quietLogger()).
		Compile(context.Background(), model.NewDocument(), &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Zero(t, stats.LinesRead)
	assert.Empty(t, plan.TopLevel)
}

func TestCompile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, _, err := New(model.DefaultSettings()).WithLogger(quietLogger()).
		Compile(ctx, program(t, scenarioLines...), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
