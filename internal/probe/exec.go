package probe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/probelab/kexscan/internal/errors"
	"github.com/probelab/kexscan/internal/logger"
)

// ExecProber probes hosts by invoking an external SSH client binary.
// The client is configured to be fully non-interactive: no prompts, no
// host-key verification, no authentication methods. A reachable server is
// expected to reject the connection; what matters is the error text.
type ExecProber struct {
	// Bin is the ssh client binary, resolved via $PATH if not absolute.
	Bin string

	Options

	// Log receives per-probe debug output. Nil means the default logger.
	Log logger.Logger

	// argsFn overrides argument construction in tests.
	argsFn func(host string) []string
}

// NewExecProber creates a prober that shells out to the given ssh binary.
func NewExecProber(bin string, opts Options) *ExecProber {
	return &ExecProber{Bin: bin, Options: opts, Log: logger.NewEnvLogger("[probe]")}
}

// Probe runs one handshake attempt against host. It never returns a fatal
// condition: timeouts and rejections are recorded on the Outcome, and only
// a failure to start the client at all sets Outcome.Err.
func (p *ExecProber) Probe(ctx context.Context, host string) Outcome {
	start := time.Now()
	outcome := Outcome{Host: host}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	argsFn := p.args
	if p.argsFn != nil {
		argsFn = p.argsFn
	}
	args := argsFn(host)
	cmd := exec.CommandContext(ctx, p.Bin, args...)

	// Merged stdout+stderr; the KEX error text arrives on stderr.
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	if p.Log != nil {
		p.Log.Debug("probing %s: %s %v", host, p.Bin, args)
	}

	runErr := cmd.Run()
	outcome.Output = combined.String()
	outcome.Duration = time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		outcome.TimedOut = true
		outcome.ExitCode = TimeoutExitCode
		return outcome
	}

	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			// The client ran and was rejected; that's the normal case
			// for a probe with authentication disabled.
			outcome.ExitCode = exitErr.ExitCode()
			return outcome
		}
		// The client never ran (missing binary, fork failure).
		outcome.ExitCode = -1
		outcome.Err = errors.WrapWithCode(runErr, errors.ErrExec,
			fmt.Sprintf("Couldn't start the SSH client for %s", host),
			"Check that '"+p.Bin+"' is installed and on your PATH")
		return outcome
	}

	outcome.ExitCode = 0
	return outcome
}

// args builds the client invocation for one host.
func (p *ExecProber) args(host string) []string {
	connectSecs := int(p.ConnectTimeout.Seconds())
	if connectSecs < 1 {
		connectSecs = 1
	}

	return []string{
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=no",
		"-o", "UserKnownHostsFile=/dev/null",
		"-o", "PreferredAuthentications=none",
		"-o", "NumberOfPasswordPrompts=0",
		"-o", fmt.Sprintf("ConnectTimeout=%d", connectSecs),
		"-p", fmt.Sprintf("%d", p.Port),
		host,
		"exit",
	}
}
