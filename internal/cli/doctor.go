package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/probelab/kexscan/internal/config"
	"github.com/probelab/kexscan/internal/doctor"
	"github.com/probelab/kexscan/internal/ui"
)

var doctorJSON bool

// doctorCmd diagnoses common scan-blocking problems.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose scan setup problems",
	Long: `Check the local environment for problems that would block a scan:
the configured ssh client, the config file, ~/.ssh/config, the input file,
and the history store.

Examples:
  kexscan doctor
  kexscan doctor --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand()
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")

	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput is the JSON shape for doctor results.
type DoctorOutput struct {
	Results []doctor.CheckResult `json:"results"`
	Summary string               `json:"summary"`
	Healthy bool                 `json:"healthy"`
}

// doctorCommand implements the doctor command logic.
func doctorCommand() error {
	// Load errors aren't fatal here; the config check reports them.
	cfg, loadErr := config.LoadOrDefault(Config())
	if loadErr != nil {
		cfg = nil
	}

	checks := doctor.NewScanChecks(cfg, loadErr)
	results := doctor.RunAll(checks)

	if doctorJSON {
		return outputDoctorJSON(results)
	}
	return outputDoctorText(results)
}

func outputDoctorJSON(results []doctor.CheckResult) error {
	output := DoctorOutput{
		Results: results,
		Summary: doctor.Summary(results),
		Healthy: !doctor.HasFailures(results),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return err
	}
	if doctor.HasFailures(results) {
		os.Exit(1)
	}
	return nil
}

func outputDoctorText(results []doctor.CheckResult) error {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Println()
	fmt.Println(headerStyle.Render("kexscan diagnostic report"))
	fmt.Println()

	for _, r := range results {
		var symbol string
		switch r.Status {
		case doctor.StatusPass:
			symbol = successStyle.Render(ui.SymbolSuccess)
		case doctor.StatusWarn:
			symbol = warnStyle.Render("!")
		case doctor.StatusFail:
			symbol = errorStyle.Render(ui.SymbolFail)
		}

		fmt.Printf("  %s %s\n", symbol, r.Message)
		if r.Suggestion != "" {
			fmt.Printf("    %s\n", mutedStyle.Render(r.Suggestion))
		}
	}

	fmt.Println()
	fmt.Println(doctor.Summary(results))

	if doctor.HasFailures(results) {
		os.Exit(1)
	}
	return nil
}
