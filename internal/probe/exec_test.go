package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/kexscan/internal/errors"
	"github.com/probelab/kexscan/internal/logger"
)

func testOptions() Options {
	return Options{
		Port:           22,
		ConnectTimeout: 2 * time.Second,
		Timeout:        5 * time.Second,
	}
}

func TestExecProberArgs(t *testing.T) {
	p := NewExecProber("ssh", testOptions())
	args := p.args("192.0.2.10")

	assert.Contains(t, args, "BatchMode=yes")
	assert.Contains(t, args, "StrictHostKeyChecking=no")
	assert.Contains(t, args, "PreferredAuthentications=none")
	assert.Contains(t, args, "ConnectTimeout=2")
	assert.Contains(t, args, "192.0.2.10")

	// Host comes after all options so it can't be mistaken for one.
	assert.Equal(t, "192.0.2.10", args[len(args)-2])
}

func TestExecProberArgsSubSecondConnectTimeout(t *testing.T) {
	opts := testOptions()
	opts.ConnectTimeout = 200 * time.Millisecond
	p := NewExecProber("ssh", opts)

	// ConnectTimeout is whole seconds for the ssh client; round up to 1.
	assert.Contains(t, p.args("h"), "ConnectTimeout=1")
}

func TestExecProberMissingBinary(t *testing.T) {
	p := NewExecProber("kexscan-definitely-not-a-binary", testOptions())
	p.Log = logger.Noop()

	outcome := p.Probe(context.Background(), "192.0.2.10")

	require.Error(t, outcome.Err)
	assert.True(t, errors.IsCode(outcome.Err, errors.ErrExec))
	assert.Equal(t, -1, outcome.ExitCode)
	assert.False(t, outcome.TimedOut)
	assert.Equal(t, "192.0.2.10", outcome.Host)
}

func TestExecProberNonZeroExit(t *testing.T) {
	// Use a shell as the "client" so the probe runs a real process that
	// prints to stderr and exits non-zero, without any network traffic.
	p := NewExecProber("/bin/sh", testOptions())
	p.Log = logger.Noop()
	p.argsFn = func(host string) []string {
		return []string{"-c", "echo 'Unable to negotiate with " + host + "' >&2; exit 255"}
	}

	outcome := p.Probe(context.Background(), "192.0.2.10")

	require.NoError(t, outcome.Err)
	assert.Equal(t, 255, outcome.ExitCode)
	assert.Contains(t, outcome.Output, "Unable to negotiate")
	assert.False(t, outcome.TimedOut)
}

func TestExecProberTimeout(t *testing.T) {
	opts := testOptions()
	opts.Timeout = 100 * time.Millisecond

	p := NewExecProber("/bin/sh", opts)
	p.Log = logger.Noop()
	p.argsFn = func(string) []string {
		return []string{"-c", "sleep 5"}
	}

	start := time.Now()
	outcome := p.Probe(context.Background(), "192.0.2.10")

	require.NoError(t, outcome.Err)
	assert.True(t, outcome.TimedOut)
	assert.Equal(t, TimeoutExitCode, outcome.ExitCode)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestExecProberCleanExit(t *testing.T) {
	p := NewExecProber("/bin/sh", testOptions())
	p.Log = logger.Noop()
	p.argsFn = func(string) []string {
		return []string{"-c", "exit 0"}
	}

	outcome := p.Probe(context.Background(), "192.0.2.10")

	require.NoError(t, outcome.Err)
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Empty(t, outcome.Output)
}
