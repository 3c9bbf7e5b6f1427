// Package doctor runs diagnostic checks for common scan-blocking problems.
package doctor

import "fmt"

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Run executes the check and returns the result.
	Run() CheckResult
}

// RunAll executes all checks sequentially and returns the results.
func RunAll(checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run()
	}
	return results
}

// HasFailures returns true if any result has StatusFail.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// Summary returns a one-line summary of the results.
func Summary(results []CheckResult) string {
	issues := 0
	for _, r := range results {
		if r.Status != StatusPass {
			issues++
		}
	}
	if issues == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d issue%s found", issues, pluralize(issues))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
