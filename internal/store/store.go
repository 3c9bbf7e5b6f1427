// Package store persists scan history to a local SQLite database so runs
// can be exported and re-examined without re-probing anything.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/probelab/kexscan/internal/errors"
	"github.com/probelab/kexscan/internal/result"
)

// RunMeta describes one completed (or interrupted) scan.
type RunMeta struct {
	Input       string
	StartedAt   time.Time
	Duration    time.Duration
	Total       int
	Compatible  int
	KexErrors   int
	ProbeFailed int
	Interrupted bool
}

// RunResult is one stored per-host result.
type RunResult struct {
	Seq            int
	Host           string
	Classification string
	ExitCode       int
	TimedOut       bool
	Output         string
}

// Run is a stored run header.
type Run struct {
	ID        int64
	StartedAt time.Time
	Meta      RunMeta
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,
    input TEXT NOT NULL,
    total INTEGER NOT NULL,
    compatible INTEGER NOT NULL,
    kex_errors INTEGER NOT NULL,
    probe_failed INTEGER NOT NULL,
    interrupted INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL REFERENCES runs(id),
    seq INTEGER NOT NULL,
    host TEXT NOT NULL,
    classification TEXT NOT NULL,
    exit_code INTEGER NOT NULL,
    timed_out INTEGER NOT NULL,
    output TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id, seq);
`

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrStore,
				"Can't create store directory: "+dir,
				"Check directory permissions")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			"Can't open scan store: "+path,
			"Check the path is writable")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			"Can't initialize scan store schema",
			"Delete "+path+" if it is corrupt and re-run")
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records a run and its per-host results in one transaction.
// Returns the new run ID.
func (s *Store) SaveRun(meta RunMeta, records []result.Record) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrStore, "Can't start store transaction", "")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(
		`INSERT INTO runs (started_at, duration_ms, input, total, compatible, kex_errors, probe_failed, interrupted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.StartedAt.UTC().Format(time.RFC3339Nano),
		meta.Duration.Milliseconds(),
		meta.Input,
		meta.Total,
		meta.Compatible,
		meta.KexErrors,
		meta.ProbeFailed,
		boolInt(meta.Interrupted),
	)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrStore, "Can't record run", "")
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrStore, "Can't read new run ID", "")
	}

	stmt, err := tx.Prepare(
		`INSERT INTO results (run_id, seq, host, classification, exit_code, timed_out, output)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrStore, "Can't prepare result insert", "")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range records {
		if _, err := stmt.Exec(runID, r.Seq, r.Host, r.Classification.String(),
			r.ExitCode, boolInt(r.TimedOut), r.Output); err != nil {
			return 0, errors.WrapWithCode(err, errors.ErrStore,
				"Can't record result for "+r.Host, "")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrStore, "Can't commit run", "")
	}

	return runID, nil
}

// LatestRunID returns the most recent run's ID, or an ErrStore error if no
// runs have been recorded.
func (s *Store) LatestRunID() (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, errors.New(errors.ErrStore,
			"No runs recorded yet",
			"Run a scan with the store enabled first")
	}
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrStore, "Can't query latest run", "")
	}
	return id, nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, duration_ms, input, total, compatible, kex_errors, probe_failed, interrupted
		 FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore, "Can't list runs", "")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		var durationMS int64
		var interrupted int
		if err := rows.Scan(&r.ID, &started, &durationMS, &r.Meta.Input, &r.Meta.Total,
			&r.Meta.Compatible, &r.Meta.KexErrors, &r.Meta.ProbeFailed, &interrupted); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrStore, "Can't read run row", "")
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.Meta.StartedAt = r.StartedAt
		r.Meta.Duration = time.Duration(durationMS) * time.Millisecond
		r.Meta.Interrupted = interrupted != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunResults returns a run's per-host results in input order.
func (s *Store) RunResults(runID int64) ([]RunResult, error) {
	rows, err := s.db.Query(
		`SELECT seq, host, classification, exit_code, timed_out, output
		 FROM results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore, "Can't query run results", "")
	}
	defer rows.Close() //nolint:errcheck

	var out []RunResult
	for rows.Next() {
		var r RunResult
		var timedOut int
		if err := rows.Scan(&r.Seq, &r.Host, &r.Classification, &r.ExitCode, &timedOut, &r.Output); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrStore, "Can't read result row", "")
		}
		r.TimedOut = timedOut != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
