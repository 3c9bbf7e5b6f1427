// Package classify assigns each probe outcome to a partition.
//
// This is a best-effort heuristic over unstructured client output, not a
// protocol parser. False positives and negatives are expected and fine:
// the partitions pre-filter hosts before a bulk follow-on scan.
package classify

import (
	"strings"

	"github.com/probelab/kexscan/internal/probe"
)

// Classification is the partition a host lands in after probing.
type Classification int

const (
	// Compatible means no known failure signature matched. This includes
	// clean rejections, empty output, and timeouts.
	Compatible Classification = iota

	// IncompatibleKeyExchange means the output matched a key-exchange or
	// protocol incompatibility signature.
	IncompatibleKeyExchange

	// ProbeFailed means the probe could not be attempted at all, e.g.
	// the client binary is missing. Kept distinct so a broken local
	// setup doesn't masquerade as a field of compatible hosts.
	ProbeFailed
)

// String returns the classification's human-readable name.
func (c Classification) String() string {
	switch c {
	case Compatible:
		return "compatible"
	case IncompatibleKeyExchange:
		return "kex-incompatible"
	case ProbeFailed:
		return "probe-failed"
	default:
		return "unknown"
	}
}

// DefaultSignatures are the case-insensitive substrings that mark a probe's
// output as a key-exchange incompatibility.
var DefaultSignatures = []string{
	"key exchange",
	"unable to negotiate",
	"no matching",
	"algorithm",
	"protocol version",
}

// Classifier matches probe output against a signature set.
type Classifier struct {
	signatures []string
}

// New creates a classifier with the default signatures plus any extras.
// Signatures are matched case-insensitively.
func New(extra ...string) *Classifier {
	sigs := make([]string, 0, len(DefaultSignatures)+len(extra))
	for _, s := range DefaultSignatures {
		sigs = append(sigs, strings.ToLower(s))
	}
	for _, s := range extra {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			sigs = append(sigs, s)
		}
	}
	return &Classifier{signatures: sigs}
}

// Classify assigns a classification to a probe outcome. It is a pure
// function of the outcome: the same outcome always yields the same
// classification, so recorded output can be re-classified later.
func (c *Classifier) Classify(o probe.Outcome) Classification {
	if o.Err != nil {
		return ProbeFailed
	}

	out := strings.ToLower(o.Output)
	for _, sig := range c.signatures {
		if strings.Contains(out, sig) {
			return IncompatibleKeyExchange
		}
	}

	// No signature matched. Timeouts and empty output land here too;
	// the signature set never matches empty output.
	return Compatible
}

// ClassifyText classifies raw recorded output with no exit status context.
func (c *Classifier) ClassifyText(output string) Classification {
	return c.Classify(probe.Outcome{Output: output})
}
