package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/probelab/kexscan/internal/config"
	"github.com/probelab/kexscan/internal/store"
	"github.com/probelab/kexscan/pkg/sshutil"
)

// SSHBinaryCheck verifies the external SSH client is available.
// Only meaningful for the exec prober; the native prober needs no binary.
type SSHBinaryCheck struct {
	Bin string
}

func (c *SSHBinaryCheck) Name() string { return "ssh_binary" }

func (c *SSHBinaryCheck) Run() CheckResult {
	path, err := exec.LookPath(c.Bin)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("SSH client '%s' not found", c.Bin),
			Suggestion: "Install openssh-client, or switch to 'probe.prober: native'",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "SSH client found: " + path,
	}
}

// ConfigCheck validates the resolved configuration.
type ConfigCheck struct {
	Cfg *config.Config
	Err error // load error, if any
}

func (c *ConfigCheck) Name() string { return "config" }

func (c *ConfigCheck) Run() CheckResult {
	if c.Err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Config failed to load",
			Suggestion: c.Err.Error(),
		}
	}
	if err := config.Validate(c.Cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Config is invalid",
			Suggestion: err.Error(),
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Config OK",
	}
}

// InputCheck verifies the default host list exists and is readable.
type InputCheck struct {
	Path string
}

func (c *InputCheck) Name() string { return "input" }

func (c *InputCheck) Run() CheckResult {
	info, err := os.Stat(c.Path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Host list not found: " + c.Path,
			Suggestion: "Create it with one host per line, or pass --input to scan",
		}
	}
	if info.IsDir() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    c.Path + " is a directory, not a host list",
			Suggestion: "Point 'input' at a text file",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Host list found: %s (%d bytes)", c.Path, info.Size()),
	}
}

// SSHConfigCheck verifies ~/.ssh/config parses, since the native prober
// resolves aliases through it.
type SSHConfigCheck struct{}

func (c *SSHConfigCheck) Name() string { return "ssh_config" }

func (c *SSHConfigCheck) Run() CheckResult {
	home, err := os.UserHomeDir()
	if err != nil {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "No home directory; skipping"}
	}

	path := filepath.Join(home, ".ssh", "config")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "No ~/.ssh/config (hosts resolve as written)"}
	}

	if _, err := sshutil.NewResolverFromFile(path); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "~/.ssh/config failed to parse",
			Suggestion: "Aliases won't resolve: " + err.Error(),
		}
	}
	return CheckResult{Name: c.Name(), Status: StatusPass, Message: "~/.ssh/config OK"}
}

// StoreCheck verifies the history store opens when enabled.
type StoreCheck struct {
	Cfg config.StoreConfig
}

func (c *StoreCheck) Name() string { return "store" }

func (c *StoreCheck) Run() CheckResult {
	if !c.Cfg.Enabled {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Store disabled"}
	}

	s, err := store.Open(c.Cfg.Path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Can't open store at " + c.Cfg.Path,
			Suggestion: err.Error(),
		}
	}
	s.Close() //nolint:errcheck

	return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Store OK: " + c.Cfg.Path}
}

// NewScanChecks builds the standard check set for the resolved config.
func NewScanChecks(cfg *config.Config, loadErr error) []Check {
	checks := []Check{
		&ConfigCheck{Cfg: cfg, Err: loadErr},
		&SSHConfigCheck{},
	}
	if cfg != nil {
		if cfg.Probe.Prober == "exec" {
			checks = append(checks, &SSHBinaryCheck{Bin: cfg.Probe.SSHBin})
		}
		checks = append(checks,
			&InputCheck{Path: cfg.Input},
			&StoreCheck{Cfg: cfg.Store},
		)
	}
	return checks
}
