// Package runner schedules contracts under test across a worker pool, one worker instance per contract so that
// setUp() state never leaks between contracts, and aggregates their individual test results into a single report.
package runner

import (
	"time"

	"github.com/crytic/forge-core/executor"
)

// Report is the outcome of one invocation of Run: every test result collected, in the order their contracts were
// scheduled, plus whether the run was cancelled before every contract finished.
type Report struct {
	Results   []*executor.TestResult
	StartedAt time.Time
	EndedAt   time.Time
	Cancelled bool
}

// Passed returns the number of results with TestStatusPass.
func (r *Report) Passed() int {
	return r.count(executor.TestStatusPass)
}

// Failed returns the number of results with TestStatusFail.
func (r *Report) Failed() int {
	return r.count(executor.TestStatusFail)
}

// Skipped returns the number of results with TestStatusSkipped.
func (r *Report) Skipped() int {
	return r.count(executor.TestStatusSkipped)
}

func (r *Report) count(status executor.TestStatus) int {
	n := 0
	for _, result := range r.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}
