package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/internal/parquet"
	"github.com/huangsam/fm301check/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withStore installs store as the global run store for one test.
func withStore(t *testing.T, store contract.RunStore) {
	t.Helper()
	Manager.Lock()
	previous := Manager.runs
	Manager.runs = store
	Manager.Unlock()
	t.Cleanup(func() {
		Manager.Lock()
		Manager.runs = previous
		Manager.Unlock()
	})
}

func TestGetRunStore(t *testing.T) {
	mgr := &StoreManager{}
	assert.Nil(t, mgr.GetRunStore())

	store := &MockRunStore{}
	mgr.runs = store
	assert.Same(t, store, mgr.GetRunStore())
}

func TestMigrateHistory_NoneBackend(t *testing.T) {
	err := MigrateHistory(schema.NoneBackend, "", -1)
	assert.ErrorContains(t, err, "not supported for the none backend")
}

func TestMigrateHistory_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	require.NoError(t, err)

	// Already at the latest version
	assert.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))
	assert.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 1))
	assert.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 2))

	// The store works against a migrated database
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	_, err = store.BeginRun(sampleReport(), nil)
	assert.NoError(t, err)
}

func TestUpStatements(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		t.Run(string(backend), func(t *testing.T) {
			statements, err := upStatements(backend)
			require.NoError(t, err)
			require.Len(t, statements, 2)
			assert.Equal(t, "000001_create_runs.up.sql", statements[0].name)
			assert.Equal(t, "000002_create_result_rows.up.sql", statements[1].name)
			assert.Contains(t, statements[0].query, runsTable)
			assert.Contains(t, statements[1].query, resultRowsTable)
		})
	}

	_, err := upStatements(schema.NoneBackend)
	assert.Error(t, err)
}

func TestClearHistory(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "clear.db")
		store, err := NewRunStore(schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))

		// Clearing twice is fine
		assert.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		assert.Error(t, ClearHistory(schema.SQLiteBackend, "", ""))
	})

	t.Run("none is a no-op", func(t *testing.T) {
		assert.NoError(t, ClearHistory(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearHistory(schema.DatabaseBackend("oracle"), "", ""))
	})
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, validateTableName(runsTable))
	assert.NoError(t, validateTableName("_private1"))
	assert.Error(t, validateTableName(""))
	assert.Error(t, validateTableName("1runs"))
	assert.Error(t, validateTableName("runs; DROP TABLE x"))
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`fm301check_runs`", quoteTableName(runsTable, schema.MySQLBackend))
	assert.Equal(t, `"fm301check_runs"`, quoteTableName(runsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"fm301check_runs"`, quoteTableName(runsTable, schema.SQLiteBackend))
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "sqlite", driverFor(schema.SQLiteBackend))
	assert.Equal(t, "mysql", driverFor(schema.MySQLBackend))
	assert.Equal(t, "pgx", driverFor(schema.PostgreSQLBackend))
}

func TestExecuteHistoryExport(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	withStore(t, store)

	report := sampleReport()
	runID, err := store.BeginRun(report, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordRows(runID, report.Rows, false))
	require.NoError(t, store.EndRun(runID, report.StartedAt.Add(time.Second), report.Overall()))

	out := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExecuteHistoryExport(out))

	runs, err := pq.ReadFile[parquet.ValidationRun](out + ".runs.parquet")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].RunUUID)

	rows, err := pq.ReadFile[parquet.ResultRow](out + ".result_rows.parquet")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExecuteHistoryExport_Errors(t *testing.T) {
	assert.ErrorContains(t, ExecuteHistoryExport(""), "--output-file is required")

	store := &MockRunStore{}
	store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)
	withStore(t, store)

	err := ExecuteHistoryExport(filepath.Join(t.TempDir(), "export"))
	assert.ErrorContains(t, err, "no validation runs found")
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "GetAllRuns")
}
