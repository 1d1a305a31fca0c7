package runner

import (
	"testing"

	"github.com/crytic/forge-core/executor"
	"github.com/stretchr/testify/assert"
)

func TestReportCountsByStatus(t *testing.T) {
	report := &Report{
		Results: []*executor.TestResult{
			{Status: executor.TestStatusPass},
			{Status: executor.TestStatusPass},
			{Status: executor.TestStatusFail},
			{Status: executor.TestStatusSkipped},
		},
	}

	assert.Equal(t, 2, report.Passed())
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, report.Skipped())
}

func TestReportCountsAreZeroForEmptyReport(t *testing.T) {
	report := &Report{}
	assert.Equal(t, 0, report.Passed())
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, 0, report.Skipped())
}
