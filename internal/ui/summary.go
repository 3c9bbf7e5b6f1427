package ui

import (
	"fmt"
	"strings"
	"time"
)

// ScanSummary holds the final counts for summary rendering.
type ScanSummary struct {
	Total       int
	Compatible  int
	KexErrors   int
	ProbeFailed int
	Blanks      int
	Duration    time.Duration
	Interrupted bool

	// CompatiblePath is where the compatible set was written, shown in
	// the follow-on hint.
	CompatiblePath string
}

// RenderScanSummary formats the end-of-run summary.
func RenderScanSummary(s ScanSummary) string {
	var b strings.Builder

	if s.Interrupted {
		b.WriteString(WarningStyle.Render("Scan interrupted; partial results below") + "\n")
	}

	b.WriteString(fmt.Sprintf("\nScanned %d host%s in %s\n", s.Total, plural(s.Total), s.Duration.Round(time.Millisecond)))
	b.WriteString(fmt.Sprintf("  %s Compatible:        %d\n", SymbolSuccess, s.Compatible))
	b.WriteString(fmt.Sprintf("  %s KEX incompatible:  %d\n", SymbolFail, s.KexErrors))
	if s.ProbeFailed > 0 {
		b.WriteString(fmt.Sprintf("  %s Probe failures:    %d\n", SymbolSkipped, s.ProbeFailed))
	}
	if s.Blanks > 0 {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("  (skipped %d blank line%s in the input)", s.Blanks, plural(s.Blanks))) + "\n")
	}

	if s.Compatible > 0 && s.CompatiblePath != "" {
		b.WriteString(fmt.Sprintf("\nFeed %s to your bulk scanner for the follow-on pass.\n", s.CompatiblePath))
	}

	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
