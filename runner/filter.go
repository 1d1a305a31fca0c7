package runner

import (
	"regexp"

	"github.com/crytic/medusa-geth/accounts/abi"

	"github.com/crytic/forge-core/executor"
)

// testFilter selects which discovered test methods should run, by matching a compiled regular expression against
// "ContractName.functionName". A nil testFilter matches everything.
type testFilter struct {
	pattern *regexp.Regexp
}

// newTestFilter compiles expr into a testFilter. An empty expr matches every test.
func newTestFilter(expr string) (*testFilter, error) {
	if expr == "" {
		return &testFilter{}, nil
	}
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &testFilter{pattern: pattern}, nil
}

// Matches reports whether the given contract/method pair should run under this filter.
func (f *testFilter) Matches(contract *executor.ContractUnderTest, method abi.Method) bool {
	if f.pattern == nil {
		return true
	}
	return f.pattern.MatchString(contract.Name + "." + method.Name)
}
