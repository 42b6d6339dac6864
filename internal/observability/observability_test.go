package observability

import (
	"encoding/json"
	"expvar"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
	"idfworkspace/pkg/workspace"
)

var (
	_ workspace.MetricsRecorder = (*ExpvarRecorder)(nil)
	_ workspace.MetricsRecorder = (*PrometheusRecorder)(nil)
	_ workspace.MetricsRecorder = Nop{}
)

func TestExpvarRecorder(t *testing.T) {
	rec := NewExpvarRecorder("")
	rec.Observe("add_objects", true, 2*time.Millisecond)
	rec.Observe("add_objects", false, 3*time.Millisecond)
	rec.Observe("", true, time.Second)

	snap := rec.Snapshot()
	assert.InDelta(t, 5.0, snap.DurationsMS["add_objects"], 0.001)
	assert.Equal(t, int64(1), snap.Results["add_objects"]["success"])
	assert.Equal(t, int64(1), snap.Results["add_objects"]["error"])
	assert.Len(t, snap.Results, 1)

	published := expvar.Get(rec.Name())
	require.NotNil(t, published)
	var decoded ExpvarSnapshot
	require.NoError(t, json.Unmarshal([]byte(published.String()), &decoded))
	assert.Equal(t, int64(1), decoded.Results["add_objects"]["error"])
}

func TestExpvarSnapshotIsCopy(t *testing.T) {
	rec := NewExpvarRecorder("")
	rec.Observe("remove", true, 0)
	snap := rec.Snapshot()
	snap.Results["remove"]["success"] = 99
	assert.Equal(t, int64(1), rec.Snapshot().Results["remove"]["success"])
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	rec, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	rec.Observe("swap", true, time.Millisecond)
	rec.Observe("swap", true, time.Millisecond)
	rec.Observe("swap", false, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.total.WithLabelValues("swap", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.total.WithLabelValues("swap", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.duration))

	expected := `
# HELP idfws_workspace_operations_total Workspace operations by name and outcome.
# TYPE idfws_workspace_operations_total counter
idfws_workspace_operations_total{operation="swap",status="error"} 1
idfws_workspace_operations_total{operation="swap",status="success"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "idfws_workspace_operations_total"))

	_, err = NewPrometheusRecorder(reg)
	require.Error(t, err, "duplicate registration")
}

func TestRecorderWiredIntoWorkspace(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	provider := schema.MustStatic(schema.TypeDef{
		Name:       "Zone",
		Named:      true,
		Fields:     []schema.FieldDef{schema.Alpha("Name")},
		References: []string{"ZoneNames"},
	})
	ws, err := workspace.New(provider, workspace.WithStrictness(domain.StrictnessNone), workspace.WithMetrics(rec))
	require.NoError(t, err)
	_, err = ws.Add(domain.NewRecord("Zone", domain.Str("Core")))
	require.NoError(t, err)
	_, err = ws.Add(domain.NewRecord("Roof", domain.Str("x")))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.total.WithLabelValues("add_objects", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.total.WithLabelValues("add_objects", "error")))
}
