// Package runner drives a scan: it feeds hosts to a bounded worker pool,
// classifies each probe outcome, and commits results to the sink.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/probelab/kexscan/internal/classify"
	"github.com/probelab/kexscan/internal/logger"
	"github.com/probelab/kexscan/internal/probe"
	"github.com/probelab/kexscan/internal/result"
)

// Summary is the aggregate outcome of a run.
type Summary struct {
	Total       int
	Compatible  int
	KexErrors   int
	ProbeFailed int
	Duration    time.Duration

	// Interrupted is set when the context was cancelled before every
	// host was classified. Committed results remain valid.
	Interrupted bool
}

// Events receives live per-host notifications during a run. Callbacks may
// arrive from multiple worker goroutines and must be safe for that.
// Completion order follows probe completion, not input order; the sink is
// what restores input order on disk.
type Events interface {
	HostStarted(seq int, host string)
	HostDone(seq int, host string, c classify.Classification, d time.Duration)
}

// Runner coordinates one scan. Each host is probed exactly once, with no
// retries; per-host work is independent and the sink serializes commits.
type Runner struct {
	Prober     probe.Prober
	Classifier *classify.Classifier
	Sink       *result.Sink

	// Parallel is the worker pool size. Values below 1 mean sequential.
	Parallel int

	// Events, when set, receives live start/done notifications.
	Events Events

	// Log receives per-run progress. Nil means the default logger.
	Log logger.Logger
}

// New creates a runner with the given collaborators.
func New(p probe.Prober, c *classify.Classifier, sink *result.Sink, parallel int) *Runner {
	return &Runner{
		Prober:     p,
		Classifier: c,
		Sink:       sink,
		Parallel:   parallel,
		Log:        logger.NewEnvLogger("[runner]"),
	}
}

type task struct {
	seq  int
	host string
}

// Run probes every host and returns the final counts. Cancelling ctx stops
// new probes from being issued; probes already in flight are terminated by
// their own deadline and their results discarded, so the committed output
// stays an ordered prefix of the input.
func (r *Runner) Run(ctx context.Context, hosts []string) (*Summary, error) {
	start := time.Now()

	summary := &Summary{Total: len(hosts)}
	if len(hosts) == 0 {
		return summary, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Channel-based queue; workers drain it until cancelled.
	queue := make(chan task, len(hosts))
	for i, h := range hosts {
		queue <- task{seq: i, host: h}
	}
	close(queue)

	workers := r.Parallel
	if workers < 1 {
		workers = 1
	}
	if workers > len(hosts) {
		workers = len(hosts)
	}

	results := make(chan result.Record, len(hosts))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, queue, results)
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var sinkErr error
	for rec := range results {
		if sinkErr != nil {
			continue // drain
		}
		if err := r.Sink.Record(rec); err != nil {
			sinkErr = err
			cancel()
		}
	}
	if sinkErr != nil {
		return nil, sinkErr
	}

	summary.Compatible, summary.KexErrors, summary.ProbeFailed = r.Sink.Counts()
	summary.Duration = time.Since(start)
	summary.Interrupted = ctx.Err() != nil

	if dropped := r.Sink.Uncommitted(); dropped > 0 && r.Log != nil {
		r.Log.Warn("dropped %d result(s) stranded behind the interrupt", dropped)
	}

	return summary, nil
}

// worker probes hosts off the queue until it drains or the run is cancelled.
func (r *Runner) worker(ctx context.Context, queue <-chan task, results chan<- result.Record) {
	for t := range queue {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if r.Events != nil {
			r.Events.HostStarted(t.seq, t.host)
		}

		outcome := r.Prober.Probe(ctx, t.host)

		// A probe cut short by cancellation (rather than its own
		// timeout) is not a real outcome; drop it.
		if ctx.Err() != nil && !outcome.TimedOut {
			return
		}

		c := r.Classifier.Classify(outcome)
		if r.Events != nil {
			r.Events.HostDone(t.seq, t.host, c, outcome.Duration)
		}

		results <- result.Record{
			Seq:            t.seq,
			Host:           t.host,
			Classification: c,
			ExitCode:       outcome.ExitCode,
			TimedOut:       outcome.TimedOut,
			Output:         outcome.Output,
			Duration:       outcome.Duration,
		}
	}
}
