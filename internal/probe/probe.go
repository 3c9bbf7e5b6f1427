// Package probe performs single connectivity attempts against SSH hosts.
//
// A probe never authenticates; its only job is to capture whatever the
// handshake produces (output, exit status, timeout) so the classifier can
// decide whether the host speaks a compatible key-exchange dialect.
package probe

import (
	"context"
	"time"
)

// TimeoutExitCode is the sentinel exit status recorded when the outer
// wall-clock timeout elapses before the client finishes.
const TimeoutExitCode = 124

// Outcome is the result of probing a single host. Produced once per host,
// immutable, and consumed by the classifier.
type Outcome struct {
	// Host is the identifier exactly as it appeared in the input.
	Host string

	// ExitCode is the probe's exit status, or TimeoutExitCode on timeout.
	ExitCode int

	// Output is the merged stdout and stderr of the probe.
	Output string

	// TimedOut is set when the outer timeout elapsed.
	TimedOut bool

	// Err is set only when the probe could not be attempted at all
	// (e.g. the ssh binary is missing). A rejected or failed handshake
	// is not an Err; that lands in Output and ExitCode.
	Err error

	// Duration is how long the probe took.
	Duration time.Duration
}

// Prober performs one connectivity probe per call. Implementations must be
// safe for concurrent use; the runner shares one Prober across its workers.
type Prober interface {
	Probe(ctx context.Context, host string) Outcome
}

// Options holds the knobs shared by prober implementations.
type Options struct {
	// Port is the SSH port used when the host has no explicit port.
	Port int

	// ConnectTimeout bounds TCP connection establishment, nested inside
	// Timeout.
	ConnectTimeout time.Duration

	// Timeout is the outer hard wall-clock limit per probe.
	Timeout time.Duration
}
