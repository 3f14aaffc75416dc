package chart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/drill"
	"github.com/quarrylabs/quarry/internal/fetch"
	"github.com/quarrylabs/quarry/internal/source"
	"github.com/quarrylabs/quarry/internal/transform"
)

func fv(v float64) *float64 { return &v }

// rootRecords is a two-level dataset: regions with country children.
func rootRecords() []drill.Record {
	return []drill.Record{
		{Name: "EMEA", Value: fv(100), Children: []drill.Record{
			{Name: "Germany", Value: fv(60)},
			{Name: "France", Value: fv(40)},
		}},
		{Name: "APAC", Value: fv(50), Children: []drill.Record{
			{Name: "Japan", Value: fv(50)},
		}},
	}
}

func newTestController(t *testing.T, cfg Config) *Controller {
	t.Helper()
	root := drill.Normalize(rootRecords())
	c, err := NewController(cfg, source.NewTreeProvider(root), rootRecords())
	require.NoError(t, err)
	return c
}

func drillCfg() Config {
	return Config{Style: BarStyle{}, DrillDownLevels: []string{"region", "country"}}
}

// TestController_InitialSnapshot verifies normalization, defaults, and the
// summary over the overview level.
func TestController_InitialSnapshot(t *testing.T) {
	c := newTestController(t, drillCfg())

	snap := c.Snapshot()
	assert.Equal(t, KindBar, snap.Kind)
	assert.Equal(t, 0, snap.Level)
	require.Len(t, snap.Data, 2)
	assert.Equal(t, transform.Summary{Count: 2, Sum: 150, Average: 75}, snap.Summary)
	require.Len(t, snap.Breadcrumbs, 1)
	assert.Equal(t, drill.OverviewName, snap.Breadcrumbs[0].Name)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
}

// TestController_DrillRecomputesPipeline verifies a drill command refreshes
// data and summary for the new level.
func TestController_DrillRecomputesPipeline(t *testing.T) {
	c := newTestController(t, drillCfg())

	id := c.Snapshot().Data[0].ID // EMEA
	require.NoError(t, c.Handle(context.Background(), drill.DrillInto{NodeID: id}))

	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, []string{"EMEA"}, snap.Path)
	assert.Equal(t, transform.Summary{Count: 2, Sum: 100, Average: 50}, snap.Summary)
	require.Len(t, snap.Breadcrumbs, 2)
	assert.Equal(t, "EMEA", snap.Breadcrumbs[1].Name)
}

// TestController_FilterChangeRecomputes verifies SetFilter reruns the
// pipeline without touching navigation.
func TestController_FilterChangeRecomputes(t *testing.T) {
	c := newTestController(t, drillCfg())

	f := transform.DefaultFilterConfig()
	f.ValueRangePercent = [2]float64{50, 100} // values span [50,100] -> keep >= 75
	c.SetFilter(f)

	snap := c.Snapshot()
	assert.Equal(t, 0, snap.Level, "filtering must not navigate")
	require.Len(t, snap.Data, 1)
	assert.Equal(t, "EMEA", snap.Data[0].Name)
	assert.Equal(t, transform.Summary{Count: 1, Sum: 100, Average: 100}, snap.Summary)
}

// TestController_NewRootResetsNavigation verifies a wholesale dataset
// replacement returns to the overview.
func TestController_NewRootResetsNavigation(t *testing.T) {
	c := newTestController(t, drillCfg())
	id := c.Snapshot().Data[0].ID
	require.NoError(t, c.Handle(context.Background(), drill.DrillInto{NodeID: id}))

	c.SetRootRecords([]drill.Record{{Name: "AMER", Value: fv(10)}})

	snap := c.Snapshot()
	assert.Equal(t, 0, snap.Level)
	require.Len(t, snap.Data, 1)
	assert.Equal(t, "AMER", snap.Data[0].Name)
}

// TestController_VirtualizationBound verifies oversized levels are stride
// sampled down to the configured budget.
func TestController_VirtualizationBound(t *testing.T) {
	records := make([]drill.Record, 95)
	for i := range records {
		records[i] = drill.Record{Name: fmt.Sprintf("p%02d", i), Value: fv(float64(i))}
	}

	cfg := Config{Style: LineStyle{}, VirtualizeDataPoints: true, MaxDataPoints: 10}
	c, err := NewController(cfg, nil, records)
	require.NoError(t, err)

	snap := c.Snapshot()
	require.Len(t, snap.Data, 10)
	assert.Equal(t, "p00", snap.Data[0].Name)
	assert.Equal(t, "p90", snap.Data[9].Name)
	assert.Equal(t, 10, snap.Summary.Count, "summary is over the processed set")
}

// TestController_SnapshotIsIsolated verifies mutating a snapshot cannot
// reach controller state.
func TestController_SnapshotIsIsolated(t *testing.T) {
	c := newTestController(t, drillCfg())

	snap := c.Snapshot()
	snap.Data[0].Name = "mutated"
	snap.Path = append(snap.Path, "sneaky")

	fresh := c.Snapshot()
	assert.Equal(t, "EMEA", fresh.Data[0].Name)
	assert.Empty(t, fresh.Path)
}

// TestController_ApplyFetchState verifies the loading/error lifecycle
// surfaces in snapshots.
func TestController_ApplyFetchState(t *testing.T) {
	c := newTestController(t, drillCfg())

	c.ApplyFetchState(fetch.State{Loading: true})
	assert.True(t, c.Snapshot().Loading)

	c.ApplyFetchState(fetch.State{Loading: false, Err: errors.New("timeout talking to upstream")})
	snap := c.Snapshot()
	assert.False(t, snap.Loading)
	assert.Contains(t, snap.Error, "timeout")
}

// TestController_RejectsInvalidConfig verifies construction fails fast on a
// bad style.
func TestController_RejectsInvalidConfig(t *testing.T) {
	_, err := NewController(Config{Style: AreaStyle{Opacity: 2}}, nil, nil)
	require.Error(t, err)
}

// TestController_DefaultsApplied verifies the optional surface fills in.
func TestController_DefaultsApplied(t *testing.T) {
	c, err := NewController(Config{}, nil, nil)
	require.NoError(t, err)

	cfg := c.Config()
	assert.Equal(t, DefaultDataKey, cfg.DataKey)
	assert.Equal(t, DefaultXAxisKey, cfg.XAxisKey)
	assert.Equal(t, DefaultMaxDataPoints, cfg.MaxDataPoints)
	assert.Equal(t, DefaultAnimationDuration, cfg.AnimationDuration)
	assert.NotEmpty(t, cfg.Colors)
	assert.Equal(t, KindBar, cfg.Style.Kind())
}

// TestController_Buckets verifies grouped views follow the filter's
// grouping and aggregation.
func TestController_Buckets(t *testing.T) {
	c := newTestController(t, drillCfg())

	// No timestamps in the dataset: no buckets.
	assert.Empty(t, c.Buckets())
}
