// Package cmd defines the command-line interface for fm301check.
package cmd

import (
	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("schema", contract.DefaultSchemaPath, "Path to the JSON metadata schema")
	rootCmd.PersistentFlags().String("sweeps", string(schema.FirstSweep), "Sweep mode: f (all sweeps) or o (first sweep only)")
	rootCmd.PersistentFlags().String("output", "", "Report format: text or csv or json or pdf or parquet (default: from report extension)")
	rootCmd.PersistentFlags().String("output-file", "", "Output path prefix for history export")
	rootCmd.PersistentFlags().String("results-json", contract.DefaultResultsJSON, "Path of the results dump (empty disables it)")
	rootCmd.PersistentFlags().Bool("used-only", true, "Omit not_used rows from the report tables")
	rootCmd.PersistentFlags().Bool("fold-optional", true, "Count optional failures as not_used in summaries")
	rootCmd.PersistentFlags().Bool("fail-on-mandatory", false, "Exit with status 3 when a mandatory item fails")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored outcomes in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
