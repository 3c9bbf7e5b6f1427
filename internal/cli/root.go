// Package cli wires the kexscan commands together.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags
var (
	configFlag  string
	verboseFlag bool
)

// rootCmd is the base command for kexscan.
var rootCmd = &cobra.Command{
	Use:   "kexscan",
	Short: "Classify SSH hosts by key-exchange compatibility",
	Long: `kexscan probes a list of SSH hosts and partitions them by whether
their key-exchange negotiation succeeds with a modern client.

Each host gets exactly one unauthenticated connection attempt. The probe's
combined output is matched against known key-exchange failure signatures,
and every host lands in exactly one output file, in input order.

Examples:
  kexscan scan
  kexscan scan --input fleet.txt --parallel 8
  kexscan classify --text "Unable to negotiate with 10.0.0.5"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Config returns the explicit config path from --config, if any.
func Config() string {
	return configFlag
}

// Execute runs the root command and exits the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if err == errInterrupted {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")
}
