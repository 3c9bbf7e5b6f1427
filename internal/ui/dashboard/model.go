package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/probelab/kexscan/internal/classify"
	"github.com/probelab/kexscan/internal/runner"
	"github.com/probelab/kexscan/internal/ui"
)

// hostState tracks where a host is in its probe lifecycle.
type hostState int

const (
	statePending hostState = iota
	stateProbing
	stateDone
)

// hostEntry holds the dashboard state for one host.
type hostEntry struct {
	Host           string
	State          hostState
	Classification classify.Classification
	StartTime      time.Time
	Duration       time.Duration
}

// Model is the Bubble Tea model for the scan dashboard.
type Model struct {
	hosts      []hostEntry
	selected   int
	width      int
	height     int
	spinner    spinner.Model
	completed  bool
	summary    *runner.Summary
	scanErr    error
	cancelFunc context.CancelFunc
	quitting   bool
	startTime  time.Time
}

// NewModel creates a dashboard model seeded with the full host list.
func NewModel(hosts []string, cancelFunc context.CancelFunc) Model {
	entries := make([]hostEntry, len(hosts))
	for i, h := range hosts {
		entries[i] = hostEntry{Host: h, State: statePending}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"◐", "◓", "◑", "◒"},
		FPS:    time.Second / 10,
	}
	sp.Style = lipgloss.NewStyle().Foreground(ui.ColorSecondary)

	return Model{
		hosts:      entries,
		spinner:    sp,
		cancelFunc: cancelFunc,
		startTime:  time.Now(),
	}
}

// Init returns the initial command for the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case HostStartedMsg:
		if msg.Seq >= 0 && msg.Seq < len(m.hosts) {
			m.hosts[msg.Seq].State = stateProbing
			m.hosts[msg.Seq].StartTime = time.Now()
		}
		return m, nil

	case HostDoneMsg:
		if msg.Seq >= 0 && msg.Seq < len(m.hosts) {
			m.hosts[msg.Seq].State = stateDone
			m.hosts[msg.Seq].Classification = msg.Classification
			m.hosts[msg.Seq].Duration = msg.Duration
		}
		return m, nil

	case scanDoneMsg:
		m.completed = true
		m.summary = msg.summary
		m.scanErr = msg.err
		// Stay up so the user can review results before quitting.
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.selected < len(m.hosts)-1 {
			m.selected++
		}
		return m, nil

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "g", "home":
		m.selected = 0
		return m, nil

	case "G", "end":
		if len(m.hosts) > 0 {
			m.selected = len(m.hosts) - 1
		}
		return m, nil

	case "q", "ctrl+c":
		if !m.completed && m.cancelFunc != nil {
			m.cancelFunc()
		}
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.renderHostList())

	if ShowFooter(m.height) {
		sb.WriteString("\n")
		sb.WriteString(m.renderFooter())
	}

	return sb.String()
}

// counts tallies hosts per state.
func (m Model) counts() (pending, probing, compatible, kexErrors, failed int) {
	for _, h := range m.hosts {
		switch h.State {
		case statePending:
			pending++
		case stateProbing:
			probing++
		case stateDone:
			switch h.Classification {
			case classify.Compatible:
				compatible++
			case classify.IncompatibleKeyExchange:
				kexErrors++
			case classify.ProbeFailed:
				failed++
			}
		}
	}
	return
}

func (m Model) renderHeader() string {
	pending, probing, compatible, kexErrors, failed := m.counts()

	var status string
	if m.completed {
		if kexErrors > 0 {
			status = summaryBadStyle.Render(fmt.Sprintf("%d KEX error%s", kexErrors, plural(kexErrors))) +
				footerStyle.Render(", ") +
				summaryGoodStyle.Render(fmt.Sprintf("%d compatible", compatible))
		} else {
			status = summaryGoodStyle.Render(fmt.Sprintf("All %d compatible", compatible))
		}
		if failed > 0 {
			status += footerStyle.Render(", ") +
				failedStyle.Render(fmt.Sprintf("%d probe failure%s", failed, plural(failed)))
		}
		if m.summary != nil {
			status += footerStyle.Render(fmt.Sprintf(" in %.1fs", m.summary.Duration.Seconds()))
		}
	} else {
		parts := []string{}
		if probing > 0 {
			parts = append(parts, probingStyle.Render(fmt.Sprintf("%d probing", probing)))
		}
		if pending > 0 {
			parts = append(parts, pendingStyle.Render(fmt.Sprintf("%d pending", pending)))
		}
		if compatible > 0 {
			parts = append(parts, compatibleStyle.Render(fmt.Sprintf("%d compatible", compatible)))
		}
		if kexErrors > 0 {
			parts = append(parts, kexErrorStyle.Render(fmt.Sprintf("%d KEX errors", kexErrors)))
		}
		if failed > 0 {
			parts = append(parts, failedStyle.Render(fmt.Sprintf("%d failed", failed)))
		}
		status = strings.Join(parts, footerStyle.Render(" | "))
	}

	return headerStyle.Render("Hosts") + " " + status
}

// visibleRows returns how many host lines fit in the current terminal.
func (m Model) visibleRows() int {
	rows := m.height - 3 // header, blank line, footer
	if rows < 1 {
		rows = len(m.hosts)
	}
	return rows
}

// renderHostList renders the hosts visible in the current window, keeping
// the selected host in view.
func (m Model) renderHostList() string {
	rows := m.visibleRows()

	offset := 0
	if m.selected >= offset+rows {
		offset = m.selected - rows + 1
	}

	end := offset + rows
	if end > len(m.hosts) {
		end = len(m.hosts)
	}

	var sb strings.Builder
	for i := offset; i < end; i++ {
		sb.WriteString(m.renderHostLine(m.hosts[i], i == m.selected))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderHostLine(h hostEntry, selected bool) string {
	var symbol string

	switch h.State {
	case statePending:
		symbol = pendingStyle.Render(ui.SymbolProgress)
	case stateProbing:
		symbol = m.spinner.View()
	case stateDone:
		switch h.Classification {
		case classify.Compatible:
			symbol = compatibleStyle.Render(ui.SymbolSuccess)
		case classify.IncompatibleKeyExchange:
			symbol = kexErrorStyle.Render(ui.SymbolFail)
		default:
			symbol = failedStyle.Render(ui.SymbolSkipped)
		}
	}

	line := symbol + " " + h.Host

	if h.State == stateDone {
		line += " " + statusText(h.Classification) + " " +
			durationStyle.Render(formatDuration(h.Duration))
	} else if h.State == stateProbing && !h.StartTime.IsZero() {
		line += " " + durationStyle.Render(formatDuration(time.Since(h.StartTime)))
	}

	prefix := "  "
	if selected {
		prefix = headerStyle.Render("> ")
	}
	return prefix + line
}

// statusText renders the classification label in its color.
func statusText(c classify.Classification) string {
	switch c {
	case classify.Compatible:
		return compatibleStyle.Render(ui.StatusLabel(c))
	case classify.IncompatibleKeyExchange:
		return kexErrorStyle.Render(ui.StatusLabel(c))
	default:
		return failedStyle.Render(ui.StatusLabel(c))
	}
}

func (m Model) renderFooter() string {
	if m.completed {
		return footerStyle.Render("Press q to exit")
	}
	return footerStyle.Render("j/k: navigate | q: cancel and exit")
}

func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	return fmt.Sprintf("%dm%.1fs", mins, secs-float64(mins)*60)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
