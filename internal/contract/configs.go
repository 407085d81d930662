package contract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/fm301check/schema"
)

// Default values for configuration.
const (
	DefaultSchemaPath  = "cf_radial_metadata_Final.json"
	DefaultResultsJSON = "results.json"
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a validation.
// This struct remains the "final, validated" config.
type Config struct {
	SchemaPath  string
	DataPath    string
	ReportPath  string
	SweepMode   schema.SweepMode
	Output      schema.OutputMode
	OutputFile  string // history export target
	ResultsJSON string // empty disables the dump

	UsedOnly        bool // omit not_used rows from rendered tables
	FoldOptional    bool // tally fail_optional rows as not_used
	FailOnMandatory bool
	Verbose         bool
	Width           int // Terminal width override (0 = auto-detect)

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored outcomes in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	DataPathStr   string
	ReportPathStr string
	SweepModeArg  string

	// --- Fields from rootCmd.PersistentFlags() ---
	Schema           string `mapstructure:"schema"`
	Sweeps           string `mapstructure:"sweeps"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	ResultsJSON      string `mapstructure:"results-json"`
	UsedOnly         bool   `mapstructure:"used-only"`
	FoldOptional     bool   `mapstructure:"fold-optional"`
	FailOnMandatory  bool   `mapstructure:"fail-on-mandatory"`
	Verbose          bool   `mapstructure:"verbose"`
	Width            int    `mapstructure:"width"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Color            string `mapstructure:"color"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSweepMode(cfg, input); err != nil {
		return err
	}
	if err := processOutputMode(cfg, input); err != nil {
		return err
	}
	if err := validateHistoryBackend(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs transfers and checks the plain fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.DataPath = strings.TrimSpace(input.DataPathStr)
	cfg.ReportPath = strings.TrimSpace(input.ReportPathStr)
	cfg.OutputFile = input.OutputFile
	cfg.ResultsJSON = input.ResultsJSON
	cfg.UsedOnly = input.UsedOnly
	cfg.FoldOptional = input.FoldOptional
	cfg.FailOnMandatory = input.FailOnMandatory
	cfg.Verbose = input.Verbose

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	cfg.SchemaPath = strings.TrimSpace(input.Schema)
	if cfg.SchemaPath == "" {
		cfg.SchemaPath = DefaultSchemaPath
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	return nil
}

// processSweepMode resolves the sweep mode. A positional argument wins over --sweeps.
func processSweepMode(cfg *Config, input *ConfigRawInput) error {
	raw := input.SweepModeArg
	if raw == "" {
		raw = input.Sweeps
	}
	if raw == "" {
		cfg.SweepMode = schema.FirstSweep
		return nil
	}
	cfg.SweepMode = schema.SweepMode(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := schema.ValidSweepModes[cfg.SweepMode]; !ok {
		return fmt.Errorf("invalid sweep mode '%s'. must be f (all sweeps) or o (first sweep only)", raw)
	}
	return nil
}

// processOutputMode resolves the report format, inferring it from the
// report path when no format was given.
func processOutputMode(cfg *Config, input *ConfigRawInput) error {
	if input.Output == "" {
		cfg.Output = InferOutputMode(cfg.ReportPath)
		return nil
	}
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, pdf, parquet", input.Output)
	}
	return nil
}

// InferOutputMode picks a report format from a file extension.
func InferOutputMode(path string) schema.OutputMode {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return schema.PDFOut
	case ".csv":
		return schema.CSVOut
	case ".json":
		return schema.JSONOut
	case ".parquet":
		return schema.ParquetOut
	default:
		return schema.TextOut
	}
}

// validateHistoryBackend validates the run history backend configuration.
func validateHistoryBackend(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = ParseHistoryBackend(input.HistoryBackend)
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// ParseHistoryBackend normalizes a backend name. Empty means none.
func ParseHistoryBackend(s string) schema.DatabaseBackend {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return schema.NoneBackend
	}
	return schema.DatabaseBackend(s)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
