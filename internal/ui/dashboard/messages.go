package dashboard

import (
	"time"

	"github.com/probelab/kexscan/internal/classify"
	"github.com/probelab/kexscan/internal/runner"
)

// HostStartedMsg signals a probe has been issued for a host.
type HostStartedMsg struct {
	Seq  int
	Host string
}

// HostDoneMsg signals a host has been probed and classified.
type HostDoneMsg struct {
	Seq            int
	Host           string
	Classification classify.Classification
	Duration       time.Duration
}

// scanDoneMsg signals the runner has finished.
type scanDoneMsg struct {
	summary *runner.Summary
	err     error
}
