package probe

import (
	"context"
	"net"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/probelab/kexscan/internal/logger"
	"github.com/probelab/kexscan/pkg/sshutil"
)

// NativeProber performs the SSH handshake in-process instead of shelling
// out to a client binary. No authentication methods are offered, so a
// healthy server rejects the connection after key exchange completes; a
// KEX mismatch surfaces as a handshake error whose text carries the same
// signatures the classifier looks for.
type NativeProber struct {
	Options

	// Resolver maps input identifiers to dialable targets, honoring
	// ~/.ssh/config aliases.
	Resolver *sshutil.Resolver

	// Log receives per-probe debug output. Nil means no logging.
	Log logger.Logger
}

// NewNativeProber creates an in-process handshake prober.
func NewNativeProber(opts Options) *NativeProber {
	return &NativeProber{
		Options:  opts,
		Resolver: sshutil.NewResolver(),
		Log:      logger.NewEnvLogger("[probe]"),
	}
}

// Probe dials the host and attempts an SSH handshake with no credentials.
// The handshake error text becomes the outcome's combined output.
func (p *NativeProber) Probe(ctx context.Context, host string) Outcome {
	start := time.Now()
	outcome := Outcome{Host: host}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	target := p.Resolver.Resolve(host, p.Port)

	user := target.User
	if user == "" {
		user = "kexscan"
	}

	cfg := &ssh.ClientConfig{
		User: user,
		// No auth methods: the probe only needs to get through key
		// exchange. Host keys are not verified; this tool talks to
		// arbitrary hosts it has never seen.
		Auth:            nil,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
		Timeout:         p.ConnectTimeout,
	}

	if p.Log != nil {
		p.Log.Debug("probing %s via handshake at %s", host, target.Address())
	}

	dialer := &net.Dialer{Timeout: p.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", target.Address())
	if err != nil {
		return p.finish(outcome, start, ctx, err)
	}
	defer conn.Close()

	// Bound the handshake by the outer deadline as well.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, target.Address(), cfg)
	if err != nil {
		return p.finish(outcome, start, ctx, err)
	}

	// A server that lets an unauthenticated client through gets closed
	// immediately; either way the host negotiated KEX fine.
	go ssh.DiscardRequests(reqs)
	go func() {
		for ch := range chans {
			_ = ch.Reject(ssh.Prohibited, "probe only")
		}
	}()
	_ = c.Close()

	outcome.ExitCode = 0
	outcome.Duration = time.Since(start)
	return outcome
}

// finish records a handshake or dial error on the outcome. The error text
// is the probe's output; a lapsed outer deadline marks a timeout.
func (p *NativeProber) finish(outcome Outcome, start time.Time, ctx context.Context, err error) Outcome {
	outcome.Duration = time.Since(start)
	outcome.Output = err.Error()

	if ctx.Err() == context.DeadlineExceeded {
		outcome.TimedOut = true
		outcome.ExitCode = TimeoutExitCode
		return outcome
	}

	outcome.ExitCode = 255
	return outcome
}
