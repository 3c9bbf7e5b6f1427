package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/probelab/kexscan/internal/classify"
	"github.com/probelab/kexscan/internal/config"
	"github.com/probelab/kexscan/internal/errors"
)

var (
	classifyText string
	classifyFile string
)

// classifyCmd re-runs the classifier over recorded probe output.
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify recorded probe output",
	Long: `Run the key-exchange classifier over a probe transcript without
probing anything. Classification depends only on the text, so the same
input always yields the same answer.

Reads from --text, --file, or stdin.

Examples:
  kexscan classify --text "Unable to negotiate with 10.0.0.5"
  kexscan classify --file transcript.log
  ssh -o BatchMode=yes host 2>&1 | kexscan classify`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return classifyCommand(cmd)
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyText, "text", "", "probe output to classify")
	classifyCmd.Flags().StringVar(&classifyFile, "file", "", "file holding probe output")

	rootCmd.AddCommand(classifyCmd)
}

func classifyCommand(cmd *cobra.Command) error {
	if classifyText != "" && classifyFile != "" {
		return errors.New(errors.ErrInput,
			"--text and --file cannot be used together",
			"Pass the transcript one way or the other")
	}

	text := classifyText
	switch {
	case classifyFile != "":
		data, err := os.ReadFile(classifyFile)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrInput,
				"Can't read "+classifyFile,
				"Check the path and permissions")
		}
		text = string(data)

	case classifyText == "":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrInput,
				"Failed reading stdin", "")
		}
		text = string(data)
	}

	cfg, err := config.LoadOrDefault(Config())
	if err != nil {
		return err
	}

	c := classify.New(cfg.Signatures...)
	fmt.Fprintln(cmd.OutOrStdout(), c.ClassifyText(text))
	return nil
}
