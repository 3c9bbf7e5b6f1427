package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/probelab/kexscan/internal/classify"
	"github.com/probelab/kexscan/internal/config"
	"github.com/probelab/kexscan/internal/errors"
	"github.com/probelab/kexscan/internal/hostlist"
	"github.com/probelab/kexscan/internal/logger"
	"github.com/probelab/kexscan/internal/probe"
	"github.com/probelab/kexscan/internal/result"
	"github.com/probelab/kexscan/internal/runner"
	"github.com/probelab/kexscan/internal/store"
	"github.com/probelab/kexscan/internal/ui"
	"github.com/probelab/kexscan/internal/ui/dashboard"
)

// errInterrupted marks a scan cut short by SIGINT/SIGTERM. Partial results
// are already flushed when it surfaces; Execute maps it to exit 130.
var errInterrupted = fmt.Errorf("interrupted")

// Scan command flags
var (
	scanInput          string
	scanCompatibleOut  string
	scanKexOut         string
	scanFailedOut      string
	scanTimeout        time.Duration
	scanConnectTimeout time.Duration
	scanParallel       int
	scanProber         string
	scanSSHBin         string
	scanPort           int
	scanStore          string
	scanDashboard      bool
	scanKeepBlanks     bool
)

// scanCmd probes every host in the input list and partitions the results.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Probe hosts and partition them by key-exchange compatibility",
	Long: `Probe every host in the input list with one unauthenticated SSH
connection attempt each, then write every host to exactly one output file:

  compatible_hosts.txt    key exchange would succeed
  kex_error_hosts.txt     key-exchange negotiation failed
  probe_failed_hosts.txt  the probe itself could not run

Output order always matches input order, even with --parallel above 1.
Interrupting a scan keeps everything classified so far.

Examples:
  kexscan scan
  kexscan scan --input fleet.txt --parallel 8
  kexscan scan --prober native --timeout 10s
  kexscan scan --dashboard`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return scanCommand(cmd)
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanInput, "input", "i", "", "host list file, one host per line")
	scanCmd.Flags().StringVar(&scanCompatibleOut, "compatible-out", "", "output file for compatible hosts")
	scanCmd.Flags().StringVar(&scanKexOut, "kex-out", "", "output file for key-exchange failures")
	scanCmd.Flags().StringVar(&scanFailedOut, "failed-out", "", "output file for probe failures")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "hard timeout per probe (e.g. 15s)")
	scanCmd.Flags().DurationVar(&scanConnectTimeout, "connect-timeout", 0, "TCP connect timeout per probe (e.g. 5s)")
	scanCmd.Flags().IntVarP(&scanParallel, "parallel", "p", 0, "number of concurrent probes (default 1)")
	scanCmd.Flags().StringVar(&scanProber, "prober", "", "probe implementation: exec or native")
	scanCmd.Flags().StringVar(&scanSSHBin, "ssh-bin", "", "ssh client binary for the exec prober")
	scanCmd.Flags().IntVar(&scanPort, "port", 0, "default SSH port")
	scanCmd.Flags().StringVar(&scanStore, "store", "", "record the run to this SQLite database")
	scanCmd.Flags().BoolVar(&scanDashboard, "dashboard", false, "show a live TUI dashboard")
	scanCmd.Flags().BoolVar(&scanKeepBlanks, "keep-blanks", false, "probe blank input lines instead of skipping them")

	rootCmd.AddCommand(scanCmd)
}

// scanCommand implements the scan command logic.
func scanCommand(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(Config())
	if err != nil {
		return err
	}
	applyScanFlags(cmd, cfg)

	if err := config.Validate(cfg); err != nil {
		return err
	}

	// When the default input doesn't exist and we're interactive, ask
	// rather than failing on a path the user never chose.
	if !cmd.Flags().Changed("input") {
		if _, statErr := os.Stat(cfg.Input); os.IsNotExist(statErr) && ui.IsTerminal() {
			path, promptErr := promptInputPath(cfg.Input)
			if promptErr != nil {
				return promptErr
			}
			cfg.Input = path
		}
	}

	list, err := hostlist.Load(cfg.Input, hostlist.Options{KeepBlanks: cfg.KeepBlanks})
	if err != nil {
		return err
	}
	if list.Blanks > 0 {
		logger.Default().Warn("skipped %d blank line(s) in %s", list.Blanks, cfg.Input)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	quiet := cfg.Output.Verbosity == "quiet"

	var progress result.ProgressFunc
	if !scanDashboard && !quiet {
		printer := ui.NewProgressPrinter(os.Stdout, cfg.Output.Color)
		progress = printer.HostLine
	}

	sink, err := result.NewSink(result.Paths{
		Compatible: cfg.Outputs.Compatible,
		KexError:   cfg.Outputs.KexError,
		Failed:     cfg.Outputs.Failed,
	}, list.Len(), progress)
	if err != nil {
		return err
	}
	defer sink.Close() //nolint:errcheck

	r := runner.New(buildProber(cfg), classify.New(cfg.Signatures...), sink, cfg.Parallel)

	started := time.Now()

	var summary *runner.Summary
	if scanDashboard {
		summary, err = dashboard.Run(ctx, r, list.Hosts)
	} else {
		summary, err = r.Run(ctx, list.Hosts)
	}
	if err != nil {
		return err
	}

	if err := sink.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrInput,
			"Failed to finalize output files",
			"Check disk space and file permissions")
	}

	if cfg.Store.Enabled {
		if saveErr := saveRun(cfg, list, summary, sink, started); saveErr != nil {
			// History is best effort; the scan itself succeeded.
			fmt.Fprintf(os.Stderr, "warning: run not recorded: %v\n", saveErr)
		}
	}

	if !quiet {
		fmt.Print(ui.RenderScanSummary(ui.ScanSummary{
			Total:          summary.Total,
			Compatible:     summary.Compatible,
			KexErrors:      summary.KexErrors,
			ProbeFailed:    summary.ProbeFailed,
			Blanks:         list.Blanks,
			Duration:       summary.Duration,
			Interrupted:    summary.Interrupted,
			CompatiblePath: cfg.Outputs.Compatible,
		}))
	}

	if summary.Interrupted {
		return errInterrupted
	}
	return nil
}

// applyScanFlags overlays explicitly-set flags onto the loaded config.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("input") {
		cfg.Input = scanInput
	}
	if flags.Changed("compatible-out") {
		cfg.Outputs.Compatible = scanCompatibleOut
	}
	if flags.Changed("kex-out") {
		cfg.Outputs.KexError = scanKexOut
	}
	if flags.Changed("failed-out") {
		cfg.Outputs.Failed = scanFailedOut
	}
	if flags.Changed("timeout") {
		cfg.Probe.Timeout = scanTimeout
	}
	if flags.Changed("connect-timeout") {
		cfg.Probe.ConnectTimeout = scanConnectTimeout
	}
	if flags.Changed("parallel") {
		cfg.Parallel = scanParallel
	}
	if flags.Changed("prober") {
		cfg.Probe.Prober = scanProber
	}
	if flags.Changed("ssh-bin") {
		cfg.Probe.SSHBin = scanSSHBin
	}
	if flags.Changed("port") {
		cfg.Probe.Port = scanPort
	}
	if flags.Changed("store") {
		cfg.Store.Enabled = true
		cfg.Store.Path = scanStore
	}
	if flags.Changed("keep-blanks") {
		cfg.KeepBlanks = scanKeepBlanks
	}
}

// buildProber picks the probe implementation from config.
func buildProber(cfg *config.Config) probe.Prober {
	opts := probe.Options{
		Port:           cfg.Probe.Port,
		ConnectTimeout: cfg.Probe.ConnectTimeout,
		Timeout:        cfg.Probe.Timeout,
	}
	if cfg.Probe.Prober == "native" {
		return probe.NewNativeProber(opts)
	}
	return probe.NewExecProber(cfg.Probe.SSHBin, opts)
}

// promptInputPath asks for a host list path interactively.
func promptInputPath(missing string) (string, error) {
	var path string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Host list file").
				Description(fmt.Sprintf("'%s' doesn't exist. Which file holds your hosts?", missing)).
				Placeholder("hosts.txt").
				Value(&path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a host list path is required")
					}
					if _, err := os.Stat(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("can't read %s", strings.TrimSpace(s))
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrInput,
			"Failed to get a host list path",
			"Pass --input explicitly")
	}
	return strings.TrimSpace(path), nil
}

// saveRun records a completed scan to the history store.
func saveRun(cfg *config.Config, list *hostlist.List, summary *runner.Summary, sink *result.Sink, started time.Time) error {
	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	_, err = s.SaveRun(store.RunMeta{
		Input:       list.Path,
		StartedAt:   started,
		Duration:    summary.Duration,
		Total:       summary.Total,
		Compatible:  summary.Compatible,
		KexErrors:   summary.KexErrors,
		ProbeFailed: summary.ProbeFailed,
		Interrupted: summary.Interrupted,
	}, sink.Records())
	return err
}
