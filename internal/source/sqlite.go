package source

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quarrylabs/quarry/internal/drill"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteProvider answers drill-down queries with live SQL aggregation over
// a points table, keyed by (dataset, parent path, level). It implements
// both the upstream Source contract and the navigator's Provider contract.
//
// Results are grouped by point name, summed, and ordered by name so the
// same position always yields the same row order.
type SQLiteProvider struct {
	db      *sql.DB
	dataset string
}

// OpenSQLite creates or opens a SQLite database at path, scoped to one
// dataset. Applies pragmas and the schema automatically; idempotent.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func OpenSQLite(path, dataset string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}

	// SQLite supports a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteProvider{db: db, dataset: dataset}, nil
}

// Close closes the underlying database.
func (p *SQLiteProvider) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Point is one raw row inserted into the store.
type Point struct {
	Level      string
	ParentPath []string
	Name       string
	Category   string
	Value      float64
	Timestamp  time.Time // zero = not time-bound
}

// Insert stores a point. Used by ingest tooling and tests.
func (p *SQLiteProvider) Insert(ctx context.Context, pt Point) error {
	var ts any
	if !pt.Timestamp.IsZero() {
		ts = pt.Timestamp.UTC().Unix()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO points (dataset, level, parent_path, name, category, value, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.dataset, pt.Level, joinPath(pt.ParentPath), pt.Name, pt.Category, pt.Value, ts)
	if err != nil {
		return fmt.Errorf("insert point: %w", err)
	}
	return nil
}

// Fetch implements Source: aggregates points for the query's drill position
// and time window.
func (p *SQLiteProvider) Fetch(ctx context.Context, q Query) ([]drill.Record, error) {
	var (
		where = []string{"dataset = ?", "level = ?", "parent_path = ?"}
		args  = []any{p.dataset, q.Level, joinPath(q.Path)}
	)
	if !q.From.IsZero() {
		where = append(where, "(ts IS NULL OR ts >= ?)")
		args = append(args, q.From.UTC().Unix())
	}
	if !q.To.IsZero() {
		where = append(where, "(ts IS NULL OR ts <= ?)")
		args = append(args, q.To.UTC().Unix())
	}

	// Deterministic ordering: grouped by name, ordered by name.
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT name, MAX(category), SUM(value), MAX(ts)
		FROM points
		WHERE %s
		GROUP BY name
		ORDER BY name ASC
	`, strings.Join(where, " AND ")), args...)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	records := []drill.Record{}
	for rows.Next() {
		var (
			name     string
			category sql.NullString
			value    float64
			ts       sql.NullInt64
		)
		if err := rows.Scan(&name, &category, &value, &ts); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		rec := drill.Record{Name: name, Category: category.String, Value: &value}
		if ts.Valid {
			rec.Timestamp = time.Unix(ts.Int64, 0).UTC()
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}
	return records, nil
}

// NodesFor implements drill.Provider: a live aggregation query keyed by
// (path, level name), normalized into nodes.
func (p *SQLiteProvider) NodesFor(ctx context.Context, path []string, level string) ([]drill.Node, error) {
	records, err := p.Fetch(ctx, Query{Dataset: p.dataset, Path: path, Level: level})
	if err != nil {
		return nil, err
	}
	return drill.Normalize(records), nil
}

func joinPath(path []string) string {
	return strings.Join(path, "/")
}
