// main is the entry point of the fm301check CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/fm301check/cmd"
	"github.com/huangsam/fm301check/internal/contract"
)

// Exit codes of the CLI.
const (
	exitOK            = 0
	exitUsage         = 1
	exitCannotRun     = 2
	exitMandatoryFail = 3
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps its error to an exit code.
// Cleanup happens here so that it runs before os.Exit.
func run() int {
	defer cmd.Cleanup()

	err := cmd.Execute()
	switch {
	case err == nil:
		return exitOK
	case contract.IsRunError(err):
		fmt.Fprintln(os.Stderr, "Invalid input file, Please use FM301 Netcdf file for compliance check")
		fmt.Fprintf(os.Stderr, "❌ Could not run the check: %v\n", err)
		return exitCannotRun
	case errors.Is(err, contract.ErrMandatoryFailures):
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return exitMandatoryFail
	default:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return exitUsage
	}
}
