package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/kexscan/internal/classify"
	"github.com/probelab/kexscan/internal/hostlist"
	"github.com/probelab/kexscan/internal/logger"
	probetesting "github.com/probelab/kexscan/internal/probe/testing"
	"github.com/probelab/kexscan/internal/result"
	"github.com/probelab/kexscan/internal/runner"
	"github.com/probelab/kexscan/internal/store"
)

// =============================================================================
// Full Scan Pipeline Tests
// =============================================================================

func TestScanPipelineEndToEnd(t *testing.T) {
	dir := t.TempDir()

	// Input with a blank line and a mix of outcomes
	input := filepath.Join(dir, "hosts.txt")
	require.NoError(t, os.WriteFile(input, []byte(
		"good-host\nlegacy-host\n\nbroken-host\nslow-host\n"), 0644))

	list, err := hostlist.Load(input, hostlist.Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, list.Len())
	assert.Equal(t, 1, list.Blanks)

	prober := probetesting.NewFakeProber()
	prober.Set("good-host", probetesting.FakeOutcome{
		ExitCode: 255,
		Output:   "good-host: Permission denied (publickey).",
	})
	prober.Set("legacy-host", probetesting.FakeOutcome{
		ExitCode: 255,
		Output:   "Unable to negotiate with legacy-host: no matching key exchange method found",
	})
	prober.Set("broken-host", probetesting.FakeOutcome{
		Err: os.ErrNotExist,
	})
	prober.Set("slow-host", probetesting.FakeOutcome{
		ExitCode: 124,
		TimedOut: true,
	})

	paths := result.Paths{
		Compatible: filepath.Join(dir, "compatible_hosts.txt"),
		KexError:   filepath.Join(dir, "kex_error_hosts.txt"),
		Failed:     filepath.Join(dir, "probe_failed_hosts.txt"),
	}

	var progress strings.Builder
	sink, err := result.NewSink(paths, list.Len(),
		func(n, total int, host string, c classify.Classification) {
			progress.WriteString(host + "\n")
		})
	require.NoError(t, err)

	r := runner.New(prober, classify.New(), sink, 4)
	r.Log = logger.Noop()

	started := time.Now()
	summary, err := r.Run(context.Background(), list.Hosts)
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Compatible) // rejection and timeout both pass
	assert.Equal(t, 1, summary.KexErrors)
	assert.Equal(t, 1, summary.ProbeFailed)

	// Progress followed input order even with a concurrent pool
	assert.Equal(t, "good-host\nlegacy-host\nbroken-host\nslow-host\n", progress.String())

	ok, err := os.ReadFile(paths.Compatible)
	require.NoError(t, err)
	assert.Equal(t, "good-host\nslow-host\n", string(ok))

	kex, err := os.ReadFile(paths.KexError)
	require.NoError(t, err)
	assert.Equal(t, "legacy-host\n", string(kex))

	failed, err := os.ReadFile(paths.Failed)
	require.NoError(t, err)
	assert.Equal(t, "broken-host\n", string(failed))

	// Record the run and export it back out
	s, err := store.Open(filepath.Join(dir, "kexscan.db"))
	require.NoError(t, err)
	defer s.Close()

	runID, err := s.SaveRun(store.RunMeta{
		Input:       list.Path,
		StartedAt:   started,
		Duration:    summary.Duration,
		Total:       summary.Total,
		Compatible:  summary.Compatible,
		KexErrors:   summary.KexErrors,
		ProbeFailed: summary.ProbeFailed,
	}, sink.Records())
	require.NoError(t, err)

	latest, err := s.LatestRunID()
	require.NoError(t, err)
	assert.Equal(t, runID, latest)

	var csv bytes.Buffer
	require.NoError(t, s.ExportCSV(runID, &csv))
	assert.Contains(t, csv.String(), "legacy-host")
	assert.Contains(t, csv.String(), "kex-incompatible")
}

func TestScanPipelineMissingInputTouchesNothing(t *testing.T) {
	dir := t.TempDir()

	_, err := hostlist.Load(filepath.Join(dir, "missing.txt"), hostlist.Options{})
	require.Error(t, err)

	// The sink is only created after the input loads, so output files
	// from a previous run survive a bad invocation.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScanPipelineRerunTruncates(t *testing.T) {
	dir := t.TempDir()

	paths := result.Paths{
		Compatible: filepath.Join(dir, "ok.txt"),
		KexError:   filepath.Join(dir, "kex.txt"),
		Failed:     filepath.Join(dir, "failed.txt"),
	}

	run := func(hosts []string) {
		prober := probetesting.NewFakeProber()
		sink, err := result.NewSink(paths, len(hosts), nil)
		require.NoError(t, err)

		r := runner.New(prober, classify.New(), sink, 1)
		r.Log = logger.Noop()

		_, err = r.Run(context.Background(), hosts)
		require.NoError(t, err)
		require.NoError(t, sink.Close())
	}

	run([]string{"a", "b", "c"})
	run([]string{"d"})

	ok, err := os.ReadFile(paths.Compatible)
	require.NoError(t, err)
	assert.Equal(t, "d\n", string(ok))
}
