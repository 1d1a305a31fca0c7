package fuzzdriver

import (
	"testing"

	"github.com/crytic/forge-core/runnerconfig"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/stretchr/testify/assert"
)

func TestNewUsesDefaultRunsWhenFuzzRunsIsZero(t *testing.T) {
	cfg := runnerconfig.DefaultConfig()
	cfg.FuzzRuns = 0
	driver := New(cfg)
	assert.Equal(t, 256, driver.runs)
}

func TestNewUsesConfiguredRunsAndSeed(t *testing.T) {
	cfg := runnerconfig.DefaultConfig()
	cfg.FuzzRuns = 10
	seed := int64(42)
	cfg.FuzzSeed = &seed

	driver := New(cfg)
	assert.Equal(t, 10, driver.runs)
	assert.Equal(t, int64(42), driver.seed)
}

func TestSelectorSeedIsDeterministicAndDistinguishesMethods(t *testing.T) {
	transfer := abi.NewMethod("testTransfer", "testTransfer", abi.Function, "", false, false, abi.Arguments{}, abi.Arguments{})
	withdraw := abi.NewMethod("testWithdraw", "testWithdraw", abi.Function, "", false, false, abi.Arguments{}, abi.Arguments{})

	assert.Equal(t, selectorSeed(transfer), selectorSeed(transfer))
	assert.NotEqual(t, selectorSeed(transfer), selectorSeed(withdraw))
}

func TestSelectorSeedFallsBackWhenIDTooShort(t *testing.T) {
	method := abi.Method{Name: "testNoSelector"}
	assert.Equal(t, uint32(1), selectorSeed(method))
}
