// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/co2plot/internal/contract"
	"golang.org/x/term"
)

// Fixed column widths reserved when sizing the path column of a table.
const (
	windowColumnsWidth = 95 // Index + From + Length + Samples + stats + Quality with formatting
	fileColumnsWidth   = 50 // Index + Samples + Start + Status with formatting
)

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width and the width taken by the other columns.
func GetMaxTablePathWidth(cfg *contract.Config, baseWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for table borders, separators, and padding
	baseWidth += 20

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
