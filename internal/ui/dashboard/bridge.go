package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/probelab/kexscan/internal/classify"
	"github.com/probelab/kexscan/internal/runner"
)

// Bridge implements runner.Events and forwards events to the Bubble Tea
// program via program.Send(), which is goroutine-safe.
type Bridge struct {
	program *tea.Program
}

// NewBridge creates a bridge that forwards events to the given program.
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{program: program}
}

// HostStarted forwards a probe start to the TUI.
func (b *Bridge) HostStarted(seq int, host string) {
	b.program.Send(HostStartedMsg{Seq: seq, Host: host})
}

// HostDone forwards a classified host to the TUI.
func (b *Bridge) HostDone(seq int, host string, c classify.Classification, d time.Duration) {
	b.program.Send(HostDoneMsg{
		Seq:            seq,
		Host:           host,
		Classification: c,
		Duration:       d,
	})
}

// ScanDone signals that the runner has finished.
func (b *Bridge) ScanDone(summary *runner.Summary, err error) {
	b.program.Send(scanDoneMsg{summary: summary, err: err})
}
