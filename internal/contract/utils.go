package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/fm301check/schema"
)

// Color variables for console output.
var (
	FailColor    = color.New(color.FgRed, color.Bold) // FailColor marks fail_mandatory and fail_optional rows.
	NotUsedColor = color.New(color.FgBlue)            // NotUsedColor marks informational not_used rows.
	PassColor    = color.New(color.FgGreen)           // PassColor marks passing rows.
)

// OutcomeColor returns the console color for an outcome.
func OutcomeColor(o schema.Outcome) *color.Color {
	switch o {
	case schema.FailMandatory, schema.FailOptional:
		return FailColor
	case schema.NotUsed:
		return NotUsedColor
	default:
		return PassColor
	}
}

// GetColorLabel returns a colored outcome label for console output (table).
func GetColorLabel(o schema.Outcome) string {
	return OutcomeColor(o).Sprint(string(o))
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".fm301check_history.db"
	}
	return filepath.Join(homeDir, ".fm301check_history.db")
}

// TruncateText shortens s to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for content besides the ellipsis.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
