package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/kexscan/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "hosts.txt", cfg.Input)
	assert.False(t, cfg.KeepBlanks)
	assert.Equal(t, 1, cfg.Parallel)
	assert.Equal(t, "exec", cfg.Probe.Prober)
	assert.Equal(t, "ssh", cfg.Probe.SSHBin)
	assert.Equal(t, 22, cfg.Probe.Port)
	assert.Equal(t, 15*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Probe.ConnectTimeout)
	assert.Equal(t, "compatible_hosts.txt", cfg.Outputs.Compatible)
	assert.Equal(t, "kex_error_hosts.txt", cfg.Outputs.KexError)
	assert.Equal(t, "probe_failed_hosts.txt", cfg.Outputs.Failed)
	assert.False(t, cfg.Store.Enabled)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, "normal", cfg.Output.Verbosity)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".kexscan.yaml")

	content := `
version: 1
input: targets.txt
parallel: 8
probe:
  prober: native
  timeout: 30s
  connect_timeout: 3s
outputs:
  compatible: ok.txt
  kex_error: kex.txt
signatures:
  - diffie-hellman
store:
  enabled: true
  path: history.db
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "targets.txt", cfg.Input)
	assert.Equal(t, 8, cfg.Parallel)
	assert.Equal(t, "native", cfg.Probe.Prober)
	assert.Equal(t, 30*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, 3*time.Second, cfg.Probe.ConnectTimeout)
	assert.Equal(t, "ok.txt", cfg.Outputs.Compatible)
	assert.Equal(t, "kex.txt", cfg.Outputs.KexError)
	// Untouched fields keep their defaults
	assert.Equal(t, "probe_failed_hosts.txt", cfg.Outputs.Failed)
	assert.Equal(t, "ssh", cfg.Probe.SSHBin)
	assert.Equal(t, []string{"diffie-hellman"}, cfg.Signatures)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, "history.db", cfg.Store.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".kexscan.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("probe: [not: a: map"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestFindExplicit(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1\n"), 0644))

	found, err := Find(configPath)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)
}

func TestFindExplicitMissing(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "ghost.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadOrDefaultWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd) //nolint:errcheck

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Outputs, cfg.Outputs)
}
