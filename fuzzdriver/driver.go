package fuzzdriver

import (
	"github.com/crytic/forge-core/executor"
	"github.com/crytic/forge-core/runnerconfig"
	"github.com/crytic/medusa-geth/accounts/abi"
)

// FuzzDriver draws randomized argument tuples for a fuzz test function, calling exec.RunTest once per tuple, and
// shrinks the first failing tuple it finds before reporting it.
type FuzzDriver struct {
	runs int
	seed int64
}

// New builds a FuzzDriver from the run count and seed configured for the test run. A nil cfg.FuzzSeed derives the
// seed from the fuzzed method's selector, so repeated runs of the same suite are reproducible without requiring an
// explicit seed, while still drawing independent sequences for different test functions.
func New(cfg *runnerconfig.Config) *FuzzDriver {
	runs := int(cfg.FuzzRuns)
	if runs <= 0 {
		runs = 256
	}

	var seed int64
	if cfg.FuzzSeed != nil {
		seed = *cfg.FuzzSeed
	}
	return &FuzzDriver{runs: runs, seed: seed}
}

// Run draws up to d.runs argument tuples for method from exec's contract ABI, calling exec.RunTest for each. It
// returns the first failing result, with its Counterexample shrunk to a smaller reproducing tuple, or the last
// passing result if every tuple passed.
func (d *FuzzDriver) Run(exec *executor.Executor, method abi.Method) *executor.TestResult {
	argTypes := make([]abi.Type, len(method.Inputs))
	for i, input := range method.Inputs {
		argTypes[i] = input.Type
	}

	seed := d.seed
	if seed == 0 {
		seed = int64(selectorSeed(method))
	}
	generator := newRandomGenerator(seed)

	var last *executor.TestResult
	for run := 0; run < d.runs; run++ {
		args := make([]any, len(argTypes))
		for i := range argTypes {
			args[i] = generateValue(generator, &argTypes[i])
		}

		result := exec.RunTest(method, args)
		last = result
		if result.Status == executor.TestStatusFail {
			result.Counterexample = shrink(argTypes, args, func(candidate []any) bool {
				return exec.RunTest(method, candidate).Status == executor.TestStatusFail
			})
			return result
		}
	}
	return last
}

// selectorSeed derives a deterministic default seed from a method's 4-byte selector, so two fuzz runs of the same
// test function without an explicit seed draw the same sequence, while sibling test functions don't collide.
func selectorSeed(method abi.Method) uint32 {
	id := method.ID
	if len(id) < 4 {
		return 1
	}
	return uint32(id[0])<<24 | uint32(id[1])<<16 | uint32(id[2])<<8 | uint32(id[3])
}
