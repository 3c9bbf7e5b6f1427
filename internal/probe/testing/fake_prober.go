// Package testing provides test doubles for the probe package.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/probelab/kexscan/internal/probe"
)

// FakeOutcome configures the canned result for one host.
type FakeOutcome struct {
	ExitCode int
	Output   string
	TimedOut bool
	Err      error
	Delay    time.Duration // Simulated probe latency
}

// FakeProber returns canned outcomes without touching the network.
// It records probed hosts so tests can assert on call order and counts.
type FakeProber struct {
	mu       sync.Mutex
	outcomes map[string]FakeOutcome
	probed   []string

	// Default is returned for hosts with no configured outcome.
	Default FakeOutcome
}

// NewFakeProber creates an empty fake prober. Unconfigured hosts resolve
// to the zero Default outcome (clean rejection, no output).
func NewFakeProber() *FakeProber {
	return &FakeProber{outcomes: make(map[string]FakeOutcome)}
}

// Set configures the outcome returned for a host.
func (f *FakeProber) Set(host string, o FakeOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[host] = o
}

// Probe returns the configured outcome for host, honoring context
// cancellation during any simulated delay.
func (f *FakeProber) Probe(ctx context.Context, host string) probe.Outcome {
	f.mu.Lock()
	f.probed = append(f.probed, host)
	o, ok := f.outcomes[host]
	f.mu.Unlock()

	if !ok {
		o = f.Default
	}

	if o.Delay > 0 {
		select {
		case <-time.After(o.Delay):
		case <-ctx.Done():
		}
	}

	return probe.Outcome{
		Host:     host,
		ExitCode: o.ExitCode,
		Output:   o.Output,
		TimedOut: o.TimedOut,
		Err:      o.Err,
		Duration: o.Delay,
	}
}

// Probed returns the hosts probed so far, in call order.
func (f *FakeProber) Probed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.probed))
	copy(out, f.probed)
	return out
}

// ProbeCount returns how many probes have been issued.
func (f *FakeProber) ProbeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.probed)
}
