package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/probelab/kexscan/internal/config"
	"github.com/probelab/kexscan/internal/errors"
	"github.com/probelab/kexscan/internal/store"
)

var (
	exportRun   int64
	exportOut   string
	exportStore string
	exportList  bool
)

// exportCmd writes stored scan results to CSV.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a recorded run to CSV",
	Long: `Export per-host results of a recorded scan from the history store.

Runs are recorded when the store is enabled (--store on scan, or
store.enabled in config). Without --run, the latest run is exported.

Examples:
  kexscan export
  kexscan export --run 3 --out run3.csv
  kexscan export --list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportCommand(cmd)
	},
}

func init() {
	exportCmd.Flags().Int64Var(&exportRun, "run", 0, "run ID to export (default: latest)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportStore, "store", "", "SQLite database to read")
	exportCmd.Flags().BoolVar(&exportList, "list", false, "list recorded runs instead of exporting")

	rootCmd.AddCommand(exportCmd)
}

func exportCommand(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(Config())
	if err != nil {
		return err
	}

	path := cfg.Store.Path
	if cmd.Flags().Changed("store") {
		path = exportStore
	}

	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	if exportList {
		return listRuns(cmd.OutOrStdout(), s)
	}

	runID := exportRun
	if runID == 0 {
		runID, err = s.LatestRunID()
		if err != nil {
			return err
		}
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, createErr := os.Create(exportOut)
		if createErr != nil {
			return errors.WrapWithCode(createErr, errors.ErrStore,
				"Can't create "+exportOut,
				"Check the directory exists and is writable")
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	return s.ExportCSV(runID, w)
}

// listRuns prints the recorded runs, newest first.
func listRuns(w io.Writer, s *store.Store) error {
	runs, err := s.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return nil
	}

	fmt.Fprintf(w, "%-5s %-20s %-8s %-6s %-6s %-6s %-6s\n",
		"ID", "STARTED", "DURATION", "TOTAL", "OK", "KEX", "FAIL")
	for _, r := range runs {
		flags := ""
		if r.Meta.Interrupted {
			flags = " (interrupted)"
		}
		fmt.Fprintf(w, "%-5d %-20s %-8s %-6d %-6d %-6d %-6d%s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Meta.Duration.Round(time.Millisecond),
			r.Meta.Total, r.Meta.Compatible, r.Meta.KexErrors, r.Meta.ProbeFailed,
			flags)
	}
	return nil
}
