package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/kexscan/internal/classify"
	"github.com/probelab/kexscan/internal/result"
	"github.com/probelab/kexscan/internal/store"
)

func TestListRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	defer s.Close()

	t.Run("empty store", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, listRuns(&buf, s))
		assert.Contains(t, buf.String(), "No recorded runs")
	})

	t.Run("with runs", func(t *testing.T) {
		_, err := s.SaveRun(store.RunMeta{
			Input:      "hosts.txt",
			StartedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Duration:   3 * time.Second,
			Total:      2,
			Compatible: 1,
			KexErrors:  1,
		}, []result.Record{
			{Seq: 0, Host: "host-a", Classification: classify.Compatible},
			{Seq: 1, Host: "host-b", Classification: classify.IncompatibleKeyExchange},
		})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, listRuns(&buf, s))

		output := buf.String()
		assert.Contains(t, output, "2024-05-01 12:00:00")
		assert.Contains(t, output, "ID")
	})

	t.Run("interrupted flagged", func(t *testing.T) {
		_, err := s.SaveRun(store.RunMeta{
			Input:       "hosts.txt",
			StartedAt:   time.Now(),
			Total:       1,
			Interrupted: true,
		}, []result.Record{
			{Seq: 0, Host: "host-c", Classification: classify.Compatible},
		})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, listRuns(&buf, s))
		assert.Contains(t, buf.String(), "(interrupted)")
	})
}
