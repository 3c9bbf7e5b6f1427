package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/probelab/kexscan/internal/config"
)

func TestInitCommand_WritesConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, initCommand("fleet.txt", false))

	data, err := os.ReadFile(config.ConfigFileName)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))

	assert.Equal(t, "fleet.txt", cfg.Input)
	assert.Equal(t, config.CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "exec", cfg.Probe.Prober)
}

func TestInitCommand_ForceOverwrites(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, os.WriteFile(config.ConfigFileName, []byte("input: old.txt\n"), 0o644))
	require.NoError(t, initCommand("new.txt", true))

	data, err := os.ReadFile(config.ConfigFileName)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "new.txt", cfg.Input)
}
