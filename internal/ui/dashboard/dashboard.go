// Package dashboard provides a Bubble Tea TUI for watching a scan live.
// Each host gets a row that moves from pending through probing to its
// classification, with a running tally in the header.
package dashboard

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/probelab/kexscan/internal/runner"
)

// scanResult holds the result from the runner goroutine.
type scanResult struct {
	summary *runner.Summary
	err     error
}

// Run starts the dashboard TUI and the scan. The runner executes in a
// background goroutine while the TUI owns the terminal. On a non-TTY
// stdout the dashboard is skipped and the scan runs directly.
func Run(ctx context.Context, r *runner.Runner, hosts []string) (*runner.Summary, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return r.Run(ctx, hosts)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(hosts, cancel)

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	bridge := NewBridge(program)
	r.Events = bridge

	resultChan := make(chan scanResult, 1)

	go func() {
		summary, err := r.Run(ctx, hosts)
		resultChan <- scanResult{summary: summary, err: err}
		bridge.ScanDone(summary, err)
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		return nil, err
	}

	res := <-resultChan
	return res.summary, res.err
}
