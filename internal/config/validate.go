package config

import (
	"fmt"

	"github.com/probelab/kexscan/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but kexscan only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Update kexscan, or set 'version' back in .kexscan.yaml")
	}

	if cfg.Parallel < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'parallel' can't be negative (got %d)", cfg.Parallel),
			"Use 1 for sequential scanning, or a small positive number for concurrency")
	}

	if err := validateProbe(cfg.Probe); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'probe' section in your .kexscan.yaml.")
	}

	if err := validateOutputs(cfg.Outputs); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'outputs' section in your .kexscan.yaml.")
	}

	if err := validateDisplay(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your .kexscan.yaml.")
	}

	if cfg.Store.Enabled && cfg.Store.Path == "" {
		return errors.New(errors.ErrConfig,
			"Store is enabled but 'store.path' is empty",
			"Set store.path to a writable file, e.g. kexscan.db")
	}

	return nil
}

func validateProbe(p ProbeConfig) error {
	switch p.Prober {
	case "exec", "native":
	default:
		return fmt.Errorf("unknown prober %q (valid: exec, native)", p.Prober)
	}

	if p.Prober == "exec" && p.SSHBin == "" {
		return fmt.Errorf("probe.ssh_bin can't be empty with the exec prober")
	}

	if p.Port <= 0 || p.Port > 65535 {
		return fmt.Errorf("probe.port %d is out of range", p.Port)
	}

	if p.Timeout <= 0 {
		return fmt.Errorf("probe.timeout must be positive")
	}

	if p.ConnectTimeout <= 0 {
		return fmt.Errorf("probe.connect_timeout must be positive")
	}

	if p.ConnectTimeout > p.Timeout {
		return fmt.Errorf("probe.connect_timeout (%s) can't exceed probe.timeout (%s)", p.ConnectTimeout, p.Timeout)
	}

	return nil
}

func validateOutputs(o OutputsConfig) error {
	paths := map[string]string{
		"outputs.compatible": o.Compatible,
		"outputs.kex_error":  o.KexError,
		"outputs.failed":     o.Failed,
	}

	seen := make(map[string]string)
	for key, path := range paths {
		if path == "" {
			return fmt.Errorf("%s can't be empty", key)
		}
		if prev, dup := seen[path]; dup {
			return fmt.Errorf("%s and %s both point at %q", prev, key, path)
		}
		seen[path] = key
	}

	return nil
}

func validateDisplay(d DisplayConfig) error {
	switch d.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q (valid: auto, always, never)", d.Color)
	}

	switch d.Verbosity {
	case "quiet", "normal", "verbose":
	default:
		return fmt.Errorf("unknown verbosity %q (valid: quiet, normal, verbose)", d.Verbosity)
	}

	return nil
}
