package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/legalgapdb/gapcheck/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS validation_runs (
	id            TEXT PRIMARY KEY,
	run_timestamp DATETIME NOT NULL,
	total_cases   INTEGER NOT NULL,
	passed        INTEGER NOT NULL,
	failed        INTEGER NOT NULL,
	mean_score    REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS validation_reports (
	run_id        TEXT NOT NULL,
	case_id       TEXT NOT NULL,
	run_timestamp DATETIME NOT NULL,
	report        TEXT NOT NULL,
	score         REAL NOT NULL,
	tier          TEXT NOT NULL,
	pass          INTEGER NOT NULL,
	PRIMARY KEY (case_id, run_timestamp, run_id)
);

CREATE INDEX IF NOT EXISTS idx_reports_case_id ON validation_reports(case_id);
CREATE INDEX IF NOT EXISTS idx_reports_run_id ON validation_reports(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON validation_runs(run_timestamp);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, agg *model.AggregateReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO validation_runs (id, run_timestamp, total_cases, passed, failed, mean_score) VALUES (?, ?, ?, ?, ?, ?)`,
		agg.RunID, agg.RunTimestamp.UTC(), agg.TotalCases, agg.Passed, agg.Failed, agg.MeanScore,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert run")
	}

	for i := range agg.Reports {
		if err := insertReport(ctx, tx, agg.RunID, &agg.Reports[i]); err != nil {
			return err
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit run")
}

func (s *SQLiteStore) SaveReport(ctx context.Context, runID string, rep *model.ValidationReport) error {
	return insertReport(ctx, s.db, runID, rep)
}

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertReport(ctx context.Context, db execer, runID string, rep *model.ValidationReport) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal report %s", rep.CaseID)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO validation_reports (run_id, case_id, run_timestamp, report, score, tier, pass) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, rep.CaseID, rep.RunTimestamp.UTC(), string(data), rep.ConfidenceScore, string(rep.ConfidenceTier), rep.Pass,
	)
	return eris.Wrapf(err, "sqlite: insert report %s", rep.CaseID)
}

func (s *SQLiteStore) ListReports(ctx context.Context, caseID string, limit int) ([]model.ValidationReport, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT report FROM validation_reports WHERE case_id = ? ORDER BY run_timestamp DESC LIMIT ?`,
		caseID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list reports %s", caseID)
	}
	defer rows.Close()

	var reports []model.ValidationReport
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan report")
		}
		var rep model.ValidationReport
		if err := json.Unmarshal([]byte(data), &rep); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal report")
		}
		reports = append(reports, rep)
	}
	return reports, eris.Wrap(rows.Err(), "sqlite: iterate reports")
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_timestamp, total_cases, passed, failed, mean_score FROM validation_runs ORDER BY run_timestamp DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		var ts time.Time
		if err := rows.Scan(&r.RunID, &ts, &r.TotalCases, &r.Passed, &r.Failed, &r.MeanScore); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.RunTimestamp = ts.UTC()
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}
