package cmd

import (
	"github.com/huangsam/fm301check/core"
	"github.com/spf13/cobra"
)

// inspectCmd lists the structure of a radar file.
var inspectCmd = &cobra.Command{
	Use:   "inspect <data-file>",
	Short: "List the groups, variables and attributes of a radar file.",
	Long: `Print every attribute and variable of a netCDF file or metadata dump,
with its type, shape and representative value.

Useful for:
- Finding why an item is reported as missing
- Writing a metadata dump for a netCDF-4 file by hand

Examples:
  fm301check inspect radar.nc
  fm301check inspect radar.nc --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteInspect(rootCtx, cfg, logger)
	},
}
