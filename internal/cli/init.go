package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/probelab/kexscan/internal/config"
	"github.com/probelab/kexscan/internal/errors"
)

var (
	initInputFlag string
	initForce     bool
)

// initCmd creates a new .kexscan.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .kexscan.yaml configuration",
	Long: `Initialize a new kexscan configuration file.

Creates a .kexscan.yaml file in the current directory with sensible
defaults, prompting for the host list path.

Examples:
  kexscan init
  kexscan init --input fleet.txt
  kexscan init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initInputFlag, initForce)
	},
}

func init() {
	initCmd.Flags().StringVar(&initInputFlag, "input", "", "pre-specify the host list path")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")

	rootCmd.AddCommand(initCmd)
}

// initCommand creates a config file, prompting where values are missing.
func initCommand(input string, force bool) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		var overwrite bool

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)

		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}

		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if input == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Host list file").
					Description("One host per line; this is what 'kexscan scan' reads").
					Placeholder("hosts.txt").
					Value(&input).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("a host list path is required")
						}
						return nil
					}),
			),
		)

		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Pass --input to skip the prompt")
		}
	}

	cfg := config.DefaultConfig()
	cfg.Input = strings.TrimSpace(input)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to serialize config", "")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't write "+configPath,
			"Check directory permissions")
	}

	fmt.Printf("Created %s\n", configPath)
	return nil
}
