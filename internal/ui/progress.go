package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/probelab/kexscan/internal/classify"
)

// StatusLabel returns the short status word printed for a classification.
func StatusLabel(c classify.Classification) string {
	switch c {
	case classify.IncompatibleKeyExchange:
		return "KEX Error"
	case classify.ProbeFailed:
		return "Probe Error"
	default:
		return "OK"
	}
}

// ProgressPrinter emits the per-host progress line:
//
//	<n>/<total>: <host> ... <OK|KEX Error|Probe Error>
type ProgressPrinter struct {
	w     io.Writer
	color bool
}

// NewProgressPrinter creates a printer writing to w.
// colorMode is "auto", "always", or "never"; "auto" enables color only
// when stdout is a terminal.
func NewProgressPrinter(w io.Writer, colorMode string) *ProgressPrinter {
	color := false
	switch colorMode {
	case "always":
		color = true
	case "auto":
		color = IsTerminal()
	}
	return &ProgressPrinter{w: w, color: color}
}

// HostLine prints the progress line for one classified host.
func (p *ProgressPrinter) HostLine(n, total int, host string, c classify.Classification) {
	label := StatusLabel(c)
	if p.color {
		switch c {
		case classify.Compatible:
			label = SuccessStyle.Render(label)
		case classify.IncompatibleKeyExchange:
			label = ErrorStyle.Render(label)
		case classify.ProbeFailed:
			label = WarningStyle.Render(label)
		}
	}
	fmt.Fprintf(p.w, "%d/%d: %s ... %s\n", n, total, host, label)
}

// IsTerminal checks if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
