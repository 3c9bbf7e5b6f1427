package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .kexscan.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Input is the default host list path for scans.
	Input string `yaml:"input" mapstructure:"input"`

	// KeepBlanks preserves blank input lines as empty hosts instead of
	// skipping them. Off by default; matches the historical behavior of
	// probing blank lines when enabled.
	KeepBlanks bool `yaml:"keep_blanks" mapstructure:"keep_blanks"`

	// Parallel is the worker pool size for scans. 1 means sequential.
	Parallel int `yaml:"parallel" mapstructure:"parallel"`

	Probe   ProbeConfig   `yaml:"probe" mapstructure:"probe"`
	Outputs OutputsConfig `yaml:"outputs" mapstructure:"outputs"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`

	// Signatures are extra case-insensitive substrings that mark a probe's
	// output as a key-exchange incompatibility, on top of the built-in set.
	Signatures []string `yaml:"signatures" mapstructure:"signatures"`

	Output DisplayConfig `yaml:"output" mapstructure:"output"`
}

// ProbeConfig controls how each host is probed.
type ProbeConfig struct {
	// Prober selects the probe implementation: "exec" (external ssh
	// client) or "native" (in-process SSH handshake).
	Prober string `yaml:"prober" mapstructure:"prober"`

	// SSHBin is the path to the ssh client binary used by the exec prober.
	SSHBin string `yaml:"ssh_bin" mapstructure:"ssh_bin"`

	// Port is the default SSH port when a host has no explicit port.
	Port int `yaml:"port" mapstructure:"port"`

	// Timeout is the outer hard wall-clock timeout per probe.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// ConnectTimeout is the TCP connection-establish timeout nested
	// inside Timeout.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// OutputsConfig names the three partition files written per run.
type OutputsConfig struct {
	Compatible string `yaml:"compatible" mapstructure:"compatible"`
	KexError   string `yaml:"kex_error" mapstructure:"kex_error"`
	Failed     string `yaml:"failed" mapstructure:"failed"`
}

// StoreConfig controls the optional SQLite scan history.
type StoreConfig struct {
	// Enabled toggles recording runs to the store.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// DisplayConfig controls terminal output formatting.
type DisplayConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`

	// Verbosity level: "quiet", "normal", or "verbose".
	Verbosity string `yaml:"verbosity" mapstructure:"verbosity"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:    CurrentConfigVersion,
		Input:      "hosts.txt",
		KeepBlanks: false,
		Parallel:   1,
		Probe: ProbeConfig{
			Prober:         "exec",
			SSHBin:         "ssh",
			Port:           22,
			Timeout:        15 * time.Second,
			ConnectTimeout: 5 * time.Second,
		},
		Outputs: OutputsConfig{
			Compatible: "compatible_hosts.txt",
			KexError:   "kex_error_hosts.txt",
			Failed:     "probe_failed_hosts.txt",
		},
		Store: StoreConfig{
			Enabled: false,
			Path:    "kexscan.db",
		},
		Signatures: nil,
		Output: DisplayConfig{
			Color:     "auto",
			Verbosity: "normal",
		},
	}
}
