package chart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quarrylabs/quarry/internal/drill"
	"github.com/quarrylabs/quarry/internal/fetch"
	"github.com/quarrylabs/quarry/internal/transform"
)

// Snapshot is the immutable result handed to renderers and exporters: the
// processed dataset for the current drill position plus everything needed
// to draw chrome around it. Data is already filtered and virtualized;
// Summary is computed over exactly that processed set.
type Snapshot struct {
	Kind        Kind              `json:"kind"`
	Data        []drill.Node      `json:"data"`
	Summary     transform.Summary `json:"summary"`
	Level       int               `json:"level"`
	Path        []string          `json:"path"`
	Breadcrumbs []drill.Crumb     `json:"breadcrumbs"`
	Loading     bool              `json:"loading"`
	Error       string            `json:"error,omitempty"`
}

// Controller orchestrates the exploration pipeline for one chart.
//
// processedData and the drill state are recomputed only at three points:
// a navigation command, a filter change, or a new root dataset. Nothing
// else mutates them; Snapshot returns copies.
//
// The mutex is per instance, preserving the single-writer invariant when a
// controller is shared across goroutines (e.g. a poller refreshing the root
// while the UI drills).
type Controller struct {
	mu sync.Mutex

	cfg    Config
	filter transform.FilterConfig
	nav    *drill.Navigator
	logger *slog.Logger

	processed []drill.Node
	summary   transform.Summary
	loading   bool
	lastErr   error
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithFilter sets the initial filter configuration.
func WithFilter(f transform.FilterConfig) ControllerOption {
	return func(c *Controller) { c.filter = f }
}

// WithControllerLogger sets the controller's logger.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = logger }
}

// NewController creates a controller over a root record set. provider
// answers drill queries below the overview; with a nil provider those
// levels are unreachable and drilling is a no-op.
func NewController(cfg Config, provider drill.Provider, root []drill.Record, opts ...ControllerOption) (*Controller, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:    cfg,
		filter: transform.DefaultFilterConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.nav = drill.NewNavigator(cfg.DrillDownLevels, !cfg.NonInteractive, provider, drill.Normalize(root))
	c.recompute()
	return c, nil
}

// Config returns the resolved configuration (defaults applied).
func (c *Controller) Config() Config {
	return c.cfg
}

// SetRootRecords replaces the dataset wholesale: navigation resets to the
// overview and the pipeline reruns. Called when upstream filters change or
// a poll delivers fresh data.
func (c *Controller) SetRootRecords(root []drill.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nav.SetRoot(drill.Normalize(root))
	c.lastErr = nil
	c.recompute()
}

// SetFilter replaces the filter configuration and reruns the pipeline on
// the current level.
func (c *Controller) SetFilter(f transform.FilterConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	c.recompute()
}

// Handle forwards a navigation command to the state machine and, if it
// results in a transition, reruns the pipeline. Invalid transitions are
// silent no-ops per the navigator's contract.
func (c *Controller) Handle(ctx context.Context, cmd drill.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.nav.Handle(ctx, cmd); err != nil {
		return err
	}
	c.recompute()
	return nil
}

// ApplyFetchState records the retrieval lifecycle reported by a fetch
// client; wire it via fetch.WithStateFunc.
func (c *Controller) ApplyFetchState(s fetch.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = s.Loading
	c.lastErr = s.Err
	if s.Err != nil {
		c.logger.Warn("retrieval failed", "error", s.Err)
	}
}

// Snapshot returns the current render-ready view. The returned value shares
// nothing with the controller's internal state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.nav.State()
	snap := Snapshot{
		Kind:        c.cfg.Style.Kind(),
		Data:        drill.CloneNodes(c.processed),
		Summary:     c.summary,
		Level:       state.Level,
		Path:        state.Path,
		Breadcrumbs: state.Breadcrumbs,
		Loading:     c.loading,
	}
	if c.lastErr != nil {
		snap.Error = c.lastErr.Error()
	}
	return snap
}

// Buckets returns the current processed data grouped by the filter's
// time bucket, aggregated per the filter's aggregation.
func (c *Controller) Buckets() []transform.Bucket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return transform.GroupByPeriod(c.processed, c.filter.GroupBy, c.filter.Aggregation)
}

// recompute reruns the pipeline over the current level. Callers hold c.mu.
func (c *Controller) recompute() {
	data := c.nav.State().Data
	data = transform.Apply(data, c.filter)
	data = transform.Virtualize(data, transform.PerfConfig{
		VirtualizeDataPoints: c.cfg.VirtualizeDataPoints,
		MaxDataPoints:        c.cfg.MaxDataPoints,
	})
	c.processed = data
	c.summary = transform.Summarize(data)

	c.logger.Debug("pipeline recomputed",
		"level", c.nav.State().Level, "points", len(data), "sum", c.summary.Sum)
}
