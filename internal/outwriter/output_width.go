package outwriter

import (
	"os"

	"github.com/huangsam/repostats/internal/contract"
	"golang.org/x/term"
)

// terminalWidth returns the width override, the detected terminal width, or 80.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// getMaxColumnWidth calculates how wide the free-text column of a table may
// grow once the fixed column and the table borders are accounted for.
func getMaxColumnWidth(cfg *contract.Config, fixedWidth int) int {
	// Reserve space for borders, separators, and padding
	available := terminalWidth(cfg) - fixedWidth - 10
	return min(max(available, 15), 100)
}
