package outwriter

import (
	"os"

	"github.com/huangsam/fm301check/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableValueWidth calculates the maximum width of the free-text columns
// (group, name, expected and actual value) in table output based on terminal
// width.
func GetMaxTableValueWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 120 // Nine columns need more room than a narrow terminal
		} else {
			termWidth = detectedWidth
		}
	}

	// Available, both types, requirement and result with borders/padding
	baseWidth := 70

	available := (termWidth - baseWidth) / 4
	if available < 12 {
		return 12
	}
	if available > 48 {
		return 48
	}
	return available
}
