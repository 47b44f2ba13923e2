package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS validation_runs`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ts := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	agg := sampleAggregate(ts)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO validation_runs`).
		WithArgs(agg.RunID, ts, 2, 1, 1, 0.475).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for i := range agg.Reports {
		rep := &agg.Reports[i]
		data, err := json.Marshal(rep)
		require.NoError(t, err)
		mock.ExpectExec(`INSERT INTO validation_reports`).
			WithArgs(agg.RunID, rep.CaseID, ts, data, rep.ConfidenceScore, string(rep.ConfidenceTier), rep.Pass).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	require.NoError(t, s.SaveRun(context.Background(), agg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRun_RunInsertFails(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ts := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	agg := sampleAggregate(ts)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO validation_runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.SaveRun(context.Background(), agg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReport(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ts := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	rep := sampleReport("AR-LAB-001", ts, true)
	runID := uuid.NewString()
	data, err := json.Marshal(&rep)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO validation_reports`).
		WithArgs(runID, "AR-LAB-001", ts, data, 0.95, "High", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveReport(context.Background(), runID, &rep))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListReports(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ts := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	rep := sampleReport("AR-LAB-001", ts, true)
	data, err := json.Marshal(&rep)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT report FROM validation_reports WHERE case_id = \$1`).
		WithArgs("AR-LAB-001", 10).
		WillReturnRows(pgxmock.NewRows([]string{"report"}).AddRow(data))

	reports, err := s.ListReports(context.Background(), "AR-LAB-001", 10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "AR-LAB-001", reports[0].CaseID)
	assert.True(t, reports[0].Pass)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ts := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	runID := uuid.NewString()

	mock.ExpectQuery(`SELECT id, run_timestamp, total_cases, passed, failed, mean_score FROM validation_runs`).
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "run_timestamp", "total_cases", "passed", "failed", "mean_score"}).
			AddRow(runID, ts, 2, 1, 1, 0.475))

	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, 2, runs[0].TotalCases)
	assert.NoError(t, mock.ExpectationsWereMet())
}
