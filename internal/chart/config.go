package chart

import (
	"fmt"
	"time"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultDataKey           = "value"
	DefaultXAxisKey          = "name"
	DefaultMaxDataPoints     = 1000
	DefaultAnimationDuration = 300 * time.Millisecond
)

// DefaultColors is the fallback palette.
var DefaultColors = []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f"}

// Config is the controller's configuration surface. Every field is
// optional; zero values are replaced by defaults at construction. The
// boolean toggles default to on and are therefore expressed as negations.
type Config struct {
	Style Style

	DataKey  string
	XAxisKey string
	Colors   []string

	HideGrid       bool // ShowGrid defaults to true
	HideLegend     bool // ShowLegend defaults to true
	NonInteractive bool // Interactive defaults to true

	// DrillDownLevels names each drill depth in order, starting with the
	// overview. Empty means a single non-drillable level.
	DrillDownLevels []string

	// MaxDataPoints bounds the rendered dataset when virtualization is on.
	MaxDataPoints int

	// VirtualizeDataPoints enables stride downsampling of oversized levels.
	VirtualizeDataPoints bool

	AnimationDuration time.Duration
}

func (c Config) withDefaults() Config {
	if c.Style == nil {
		c.Style = BarStyle{}
	}
	if c.DataKey == "" {
		c.DataKey = DefaultDataKey
	}
	if c.XAxisKey == "" {
		c.XAxisKey = DefaultXAxisKey
	}
	if len(c.Colors) == 0 {
		c.Colors = append([]string(nil), DefaultColors...)
	}
	if c.MaxDataPoints <= 0 {
		c.MaxDataPoints = DefaultMaxDataPoints
	}
	if c.AnimationDuration <= 0 {
		c.AnimationDuration = DefaultAnimationDuration
	}
	return c
}

// Validate rejects configurations the controller cannot honor.
func (c Config) Validate() error {
	if err := ValidateStyle(c.Style); err != nil {
		return fmt.Errorf("chart config: %w", err)
	}
	if c.MaxDataPoints < 0 {
		return fmt.Errorf("chart config: maxDataPoints must be >= 0, got %d", c.MaxDataPoints)
	}
	return nil
}
