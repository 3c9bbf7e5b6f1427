// Package result owns the output side of a scan: the ordered partitions,
// their on-disk files, and the per-host progress stream.
package result

import (
	"bufio"
	"os"
	"sync"
	"time"

	"github.com/probelab/kexscan/internal/classify"
	"github.com/probelab/kexscan/internal/errors"
)

// Record is one classified host, as committed to the sink.
type Record struct {
	// Seq is the zero-based input position of the host.
	Seq            int
	Host           string
	Classification classify.Classification
	ExitCode       int
	TimedOut       bool
	Output         string
	Duration       time.Duration
}

// Paths names the three partition files.
type Paths struct {
	Compatible string
	KexError   string
	Failed     string
}

// ProgressFunc is called once per committed host, in input order.
// n is 1-based.
type ProgressFunc func(n, total int, host string, c classify.Classification)

// Sink accumulates classified hosts and streams them to the partition
// files. Writes are committed strictly in input order: results arriving
// out of order (from a concurrent scan) are buffered until the gap before
// them fills. Each committed host is flushed immediately, so a crash
// mid-run preserves everything committed so far.
type Sink struct {
	mu sync.Mutex

	total    int
	progress ProgressFunc

	files   map[classify.Classification]*os.File
	writers map[classify.Classification]*bufio.Writer

	pending map[int]Record
	next    int

	records []Record
	counts  map[classify.Classification]int
	closed  bool
}

// NewSink opens (and truncates) the partition files.
// Call only after the input list has loaded: a missing input must never
// touch the output files.
func NewSink(paths Paths, total int, progress ProgressFunc) (*Sink, error) {
	s := &Sink{
		total:    total,
		progress: progress,
		files:    make(map[classify.Classification]*os.File),
		writers:  make(map[classify.Classification]*bufio.Writer),
		pending:  make(map[int]Record),
		records:  make([]Record, 0, total),
		counts:   make(map[classify.Classification]int),
	}

	for c, path := range map[classify.Classification]string{
		classify.Compatible:              paths.Compatible,
		classify.IncompatibleKeyExchange: paths.KexError,
		classify.ProbeFailed:             paths.Failed,
	} {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			s.closeFiles()
			return nil, errors.WrapWithCode(err, errors.ErrInput,
				"Can't open output file: "+path,
				"Check the directory exists and is writable")
		}
		s.files[c] = f
		s.writers[c] = bufio.NewWriter(f)
	}

	return s, nil
}

// Record submits one classified host. Commit order follows Seq, not call
// order; a record is held back until all earlier sequences have arrived.
func (s *Sink) Record(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New(errors.ErrInput, "Result sink already closed", "")
	}

	s.pending[r.Seq] = r

	// Commit the contiguous prefix.
	for {
		rec, ok := s.pending[s.next]
		if !ok {
			return nil
		}
		delete(s.pending, s.next)

		if err := s.commit(rec); err != nil {
			return err
		}
		s.next++
	}
}

// commit appends one record to its partition file and emits progress.
// Caller holds the lock.
func (s *Sink) commit(r Record) error {
	w := s.writers[r.Classification]
	if _, err := w.WriteString(r.Host + "\n"); err != nil {
		return errors.WrapWithCode(err, errors.ErrInput,
			"Failed writing result for "+r.Host,
			"Check disk space and file permissions")
	}
	// Flush per host so partial results survive a crash.
	if err := w.Flush(); err != nil {
		return errors.WrapWithCode(err, errors.ErrInput,
			"Failed flushing results",
			"Check disk space and file permissions")
	}

	s.records = append(s.records, r)
	s.counts[r.Classification]++

	if s.progress != nil {
		s.progress(r.Seq+1, s.total, r.Host, r.Classification)
	}
	return nil
}

// Records returns the committed records in input order.
func (s *Sink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Counts returns the committed totals per partition.
func (s *Sink) Counts() (compatible, kexError, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[classify.Compatible],
		s.counts[classify.IncompatibleKeyExchange],
		s.counts[classify.ProbeFailed]
}

// Hosts returns the committed hosts in one partition, in input order.
func (s *Sink) Hosts(c classify.Classification) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, r := range s.records {
		if r.Classification == c {
			out = append(out, r.Host)
		}
	}
	return out
}

// Uncommitted reports how many submitted records are still held back
// behind a gap (nonzero only after an interrupted concurrent run).
func (s *Sink) Uncommitted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close flushes and closes the partition files. Safe to call twice.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	for _, w := range s.writers {
		if err := w.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.closeFiles(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// closeFiles closes whatever files are open. Caller holds the lock (or is
// inside NewSink before the sink escapes).
func (s *Sink) closeFiles() error {
	var firstErr error
	for c, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.files, c)
	}
	return firstErr
}
