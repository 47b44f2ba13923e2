// Package store persists the validation history log: every report of every
// run, append-only, keyed by case ID and run timestamp. The log backs
// trend-of-quality queries and the runs CLI/API surface.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/legalgapdb/gapcheck/internal/config"
	"github.com/legalgapdb/gapcheck/internal/model"
)

// Store defines the persistence interface for validation history.
// Reports are immutable once saved; there is no update or delete surface.
type Store interface {
	// SaveRun appends the aggregate summary and every per-case report of
	// one corpus run.
	SaveRun(ctx context.Context, agg *model.AggregateReport) error

	// SaveReport appends a single-case report outside a corpus run.
	SaveReport(ctx context.Context, runID string, rep *model.ValidationReport) error

	// ListReports returns past reports for one case, newest first.
	ListReports(ctx context.Context, caseID string, limit int) ([]model.ValidationReport, error)

	// ListRuns returns past corpus run summaries, newest first.
	ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
