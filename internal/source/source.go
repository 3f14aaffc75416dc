// Package source defines the upstream data-source contract and the two
// shipping implementations: a SQLite aggregation provider for live queries
// and an in-memory tree provider for datasets loaded whole.
package source

import (
	"context"
	"time"

	"github.com/quarrylabs/quarry/internal/drill"
)

// Query is the logical retrieval request handed to a Source: which dataset,
// which drill position, and which time window. A zero From/To means an
// unbounded range on that side.
type Query struct {
	Dataset string
	Path    []string
	Level   string
	From    time.Time
	To      time.Time
}

// Source retrieves aggregate records for a logical query. Errors whose
// message mentions a transient condition (network, timeout, 429, rate
// limit, 5xx) are retried by the fetch layer; anything else is terminal.
type Source interface {
	Fetch(ctx context.Context, q Query) ([]drill.Record, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context, q Query) ([]drill.Record, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, q Query) ([]drill.Record, error) {
	return f(ctx, q)
}
