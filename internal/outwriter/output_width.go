package outwriter

import (
	"os"

	"github.com/huangsam/pagepulse/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableURLWidth calculates the maximum width for URLs in table output
// based on terminal width and the fixed metric columns.
func GetMaxTableURLWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Time + Strategy + Perf + LCP + INP + CLS + Label with borders/padding
	baseWidth := 85

	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 70 {
		return 70
	}
	return available
}
