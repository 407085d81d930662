package cmd

import (
	"fmt"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/internal/history"
	"github.com/huangsam/fm301check/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyConfig reads only the history settings from file, env and flags.
func historyConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	backend := contract.ParseHistoryBackend(viper.GetString("history-backend"))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// It skips schema and data file validation.
func historySetup() error {
	backend, connStr, err := historyConfig()
	if err != nil {
		return err
	}
	if err := history.InitHistory(backend, connStr); err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads the history settings without creating any table,
// so migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = history.GetDBFilePath()
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on run history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the history of validation runs",
	Long: `Manage the stored history of validation runs.

When --history-backend is set, every validate run stores:
- Run metadata (file, schema, sweep mode, timestamps, configuration)
- The overall pass / fail_mandatory / fail_optional / not_used counts
- Every result row, including the dataset rows

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history statistics
  export  - Export runs and rows to Parquet
  clear   - Remove all stored runs
  migrate - Run database schema migrations

Examples:
  # Record runs in the default SQLite database
  fm301check validate radar.nc report.txt --history-backend sqlite

  # Check what is stored
  fm301check history status --history-backend sqlite`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run history statistics and connection details",
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := history.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		history.PrintHistoryStatus(status)
	},
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored validation runs",
	Long: `Delete all stored validation runs and their result rows.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  fm301check history export --output-file backup
  fm301check history clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		backend, connStr, err := historyConfig()
		if err != nil {
			return err
		}
		cfg.HistoryBackend = backend
		cfg.HistoryDBConnect = connStr
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := cfg.HistoryDBConnect
		if dbFilePath == "" {
			dbFilePath = history.GetDBFilePath()
		}
		if err := history.ClearHistory(cfg.HistoryBackend, dbFilePath, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// historyExportCmd exports run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs to Parquet files:
- <output-file>.runs.parquet with one record per validation run
- <output-file>.result_rows.parquet with every stored result row

Requires: --output-file parameter

Examples:
  fm301check history export --output-file fm301
  duckdb -c "SELECT outcome, count(*) FROM read_parquet('fm301.result_rows.parquet') GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the run history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  fm301check history migrate --history-backend sqlite

  # Rollback to initial state
  fm301check history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := history.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
