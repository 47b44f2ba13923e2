package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/legalgapdb/gapcheck/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, also satisfied by
// pgxmock for unit testing.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS validation_runs (
	id            TEXT PRIMARY KEY,
	run_timestamp TIMESTAMPTZ NOT NULL,
	total_cases   INTEGER NOT NULL,
	passed        INTEGER NOT NULL,
	failed        INTEGER NOT NULL,
	mean_score    DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS validation_reports (
	run_id        TEXT NOT NULL,
	case_id       TEXT NOT NULL,
	run_timestamp TIMESTAMPTZ NOT NULL,
	report        JSONB NOT NULL,
	score         DOUBLE PRECISION NOT NULL,
	tier          TEXT NOT NULL,
	pass          BOOLEAN NOT NULL,
	PRIMARY KEY (case_id, run_timestamp, run_id)
);

CREATE INDEX IF NOT EXISTS idx_reports_case_id ON validation_reports(case_id);
CREATE INDEX IF NOT EXISTS idx_reports_run_id ON validation_reports(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON validation_runs(run_timestamp);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, agg *model.AggregateReport) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO validation_runs (id, run_timestamp, total_cases, passed, failed, mean_score) VALUES ($1, $2, $3, $4, $5, $6)`,
		agg.RunID, agg.RunTimestamp.UTC(), agg.TotalCases, agg.Passed, agg.Failed, agg.MeanScore,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert run")
	}

	for i := range agg.Reports {
		rep := &agg.Reports[i]
		data, err := json.Marshal(rep)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal report %s", rep.CaseID)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO validation_reports (run_id, case_id, run_timestamp, report, score, tier, pass) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			agg.RunID, rep.CaseID, rep.RunTimestamp.UTC(), data, rep.ConfidenceScore, string(rep.ConfidenceTier), rep.Pass,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert report %s", rep.CaseID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit run")
}

func (s *PostgresStore) SaveReport(ctx context.Context, runID string, rep *model.ValidationReport) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal report %s", rep.CaseID)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO validation_reports (run_id, case_id, run_timestamp, report, score, tier, pass) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		runID, rep.CaseID, rep.RunTimestamp.UTC(), data, rep.ConfidenceScore, string(rep.ConfidenceTier), rep.Pass,
	)
	return eris.Wrapf(err, "postgres: insert report %s", rep.CaseID)
}

func (s *PostgresStore) ListReports(ctx context.Context, caseID string, limit int) ([]model.ValidationReport, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT report FROM validation_reports WHERE case_id = $1 ORDER BY run_timestamp DESC LIMIT $2`,
		caseID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list reports %s", caseID)
	}
	defer rows.Close()

	var reports []model.ValidationReport
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		var rep model.ValidationReport
		if err := json.Unmarshal(data, &rep); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal report")
		}
		reports = append(reports, rep)
	}
	return reports, eris.Wrap(rows.Err(), "postgres: iterate reports")
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, run_timestamp, total_cases, passed, failed, mean_score FROM validation_runs ORDER BY run_timestamp DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		var ts time.Time
		if err := rows.Scan(&r.RunID, &ts, &r.TotalCases, &r.Passed, &r.Failed, &r.MeanScore); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.RunTimestamp = ts.UTC()
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
