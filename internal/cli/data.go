package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/quarrylabs/quarry/internal/chart"
	"github.com/quarrylabs/quarry/internal/drill"
	"github.com/quarrylabs/quarry/internal/fetch"
	"github.com/quarrylabs/quarry/internal/source"
)

// Retrieval policy for database-backed datasets. Values suit an
// interactive CLI session: a handful of quick retries under a hard
// deadline, with a short-lived cache so re-renders in one process
// don't requery.
const (
	dbMaxRetries = 3
	dbTimeout    = 10 * time.Second
	dbCacheTTL   = time.Minute
)

// buildController assembles a controller for a dashboard over a dataset
// file. YAML datasets carry their hierarchy inline and drill through a tree
// provider; SQLite datasets (.db/.sqlite) drill through live aggregation
// queries keyed by (path, level).
func buildController(ctx context.Context, dash *Dashboard, dataPath string) (*chart.Controller, func(), error) {
	switch strings.ToLower(filepath.Ext(dataPath)) {
	case ".db", ".sqlite":
		return buildSQLiteController(ctx, dash, dataPath)
	case ".yaml", ".yml":
		return buildTreeController(dash, dataPath)
	default:
		return nil, nil, fmt.Errorf("unsupported dataset format %q (want .yaml or .db)", filepath.Ext(dataPath))
	}
}

func buildTreeController(dash *Dashboard, dataPath string) (*chart.Controller, func(), error) {
	records, err := source.LoadYAML(dataPath)
	if err != nil {
		return nil, nil, err
	}

	provider := source.NewTreeProvider(drill.Normalize(records))
	ctrl, err := chart.NewController(dash.Config, provider, records, chart.WithFilter(dash.Filter))
	if err != nil {
		return nil, nil, err
	}
	return ctrl, func() {}, nil
}

func buildSQLiteController(ctx context.Context, dash *Dashboard, dataPath string) (*chart.Controller, func(), error) {
	provider, err := source.OpenSQLite(dataPath, dash.Name)
	if err != nil {
		return nil, nil, err
	}

	overview := drill.OverviewName
	if len(dash.Config.DrillDownLevels) > 0 {
		overview = dash.Config.DrillDownLevels[0]
	}

	client := fetch.NewClient(provider,
		fetch.WithCacheTTL(dbCacheTTL),
		fetch.WithFetcher(fetch.NewFetcher(fetch.WithTimeout(dbTimeout))),
	)
	records, err := client.Load(ctx, fetch.Request{
		Query:      source.Query{Dataset: dash.Name, Level: overview},
		MaxRetries: dbMaxRetries,
	})
	if err != nil {
		provider.Close()
		return nil, nil, err
	}

	ctrl, err := chart.NewController(dash.Config, provider, records, chart.WithFilter(dash.Filter))
	if err != nil {
		provider.Close()
		return nil, nil, err
	}
	return ctrl, func() {
		client.Close()
		provider.Close()
	}, nil
}
