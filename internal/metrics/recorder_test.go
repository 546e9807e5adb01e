package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PathOrder/internal/model"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()
	stats := model.Stats{
		LinesRead:       10,
		MovementsParsed: 7,
		CutPaths:        2,
		Dependencies:    5,
		TravelBefore:    300,
		TravelAfter:     180,
		FeedConnectors:  1,
	}

	r.Observe(stats, 20*time.Millisecond, nil)
	r.Observe(stats, 30*time.Millisecond, errors.New("starved"))

	assert.InDelta(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("ok")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("error")), 1e-9)
	assert.InDelta(t, 20.0, testutil.ToFloat64(r.lines), 1e-9)
	assert.InDelta(t, 4.0, testutil.ToFloat64(r.cutPaths), 1e-9)
	assert.InDelta(t, 180.0, testutil.ToFloat64(r.travel.WithLabelValues("emitted")), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(r.connectors), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe(model.Stats{LinesRead: 3}, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "pathorder.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pathorder_lines_read_total 3")
	assert.Contains(t, string(data), `pathorder_compile_runs_total{result="ok"} 1`)
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	a.Observe(model.Stats{LinesRead: 4}, time.Millisecond, nil)

	assert.InDelta(t, 0.0, testutil.ToFloat64(b.lines), 1e-9)
}
