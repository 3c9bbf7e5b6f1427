package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/probelab/kexscan/internal/ui"
)

// HeightMinimal is the terminal height below which the footer is dropped.
const HeightMinimal = 20

var (
	pendingStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	probingStyle = lipgloss.NewStyle().
			Foreground(ui.ColorSecondary)

	compatibleStyle = lipgloss.NewStyle().
			Foreground(ui.ColorSuccess)

	kexErrorStyle = lipgloss.NewStyle().
			Foreground(ui.ColorError)

	failedStyle = lipgloss.NewStyle().
			Foreground(ui.ColorWarning)

	durationStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ui.ColorPrimary)

	footerStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	summaryGoodStyle = lipgloss.NewStyle().
				Foreground(ui.ColorSuccess).
				Bold(true)

	summaryBadStyle = lipgloss.NewStyle().
			Foreground(ui.ColorError).
			Bold(true)
)

// ShowFooter returns true if the terminal is tall enough for the footer.
func ShowFooter(height int) bool {
	return height >= HeightMinimal
}
