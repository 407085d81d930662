package cmd

import (
	"fmt"

	"github.com/huangsam/fm301check/core"
	"github.com/huangsam/fm301check/internal/contract"
	"github.com/spf13/cobra"
)

// validateArgs accepts <data-file> <report-file> [f|o] and prints usage otherwise.
func validateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(2, 3)(cmd, args); err != nil {
		_ = cmd.Usage()
		return err
	}
	return nil
}

// validateCmd checks one radar file against the schema.
var validateCmd = &cobra.Command{
	Use:   "validate <data-file> <report-file> [f|o]",
	Short: "Check a radar file against the FM 301 metadata schema.",
	Long: `Evaluate every item of the metadata schema against a CfRadial2 / FM 301 file
and write a report with a per-section summary and one row per checked item.

Sections checked:
- Global attributes and global ancillary variables
- Sweep variables and data variables of each sweep group
- Radar parameters and radar calibration groups

The sweep mode selects which sweep groups are evaluated:
  f  every sweep_N group, in numeric order
  o  only sweep_0 (default)

The report format follows --output, or the report file extension
(.pdf, .csv, .json, .parquet; anything else is a text table).
A results dump of the evaluated rows is written to --results-json.

Exit codes:
  0  the checks ran
  1  usage or configuration error
  2  the check could not run (bad schema or unreadable data file)
  3  --fail-on-mandatory is set and a mandatory item failed

Examples:
  # Check all sweeps and write a PDF report
  fm301check validate radar.nc report.pdf f

  # Check the first sweep with a custom schema, report as CSV
  fm301check validate radar.nc report.csv --schema my_schema.json

  # Gate a pipeline on mandatory items
  fm301check validate radar.nc report.txt --fail-on-mandatory`,
	Args: validateArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			_ = cmd.Usage()
			return err
		}
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		report, err := core.ExecuteValidation(rootCtx, cfg, historyManager, logger)
		if err != nil {
			return err
		}
		if cfg.FailOnMandatory && report.HasMandatoryFailures() {
			return fmt.Errorf("%w: %d rows", contract.ErrMandatoryFailures, report.Overall().FailMandatory)
		}
		return nil
	},
}
