package runnerconfig

import (
	"testing"

	forgeerrors "github.com/crytic/forge-core/errors"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsZeroFuzzRuns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FuzzRuns = 0
	err := cfg.Validate()
	assert.True(t, forgeerrors.Is(err, forgeerrors.InvalidConfig))
}

func TestValidateRejectsNonPositiveWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroGasLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GasLimit = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsForkBlockWithoutForkURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ForkBlock = 100
	assert.Error(t, cfg.Validate())
}

func TestValidateAllowsForkBlockWithForkURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ForkURL = "https://example.com/rpc"
	cfg.ForkBlock = 100
	assert.NoError(t, cfg.Validate())
}

func TestChainConfigReflectsFFIAndForkSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FFI = true
	cfg.ForkURL = "https://example.com/rpc"
	cfg.ForkBlock = 42

	chainConfig, err := cfg.ChainConfig()
	assert.NoError(t, err)
	assert.True(t, chainConfig.CheatCodeConfig.CheatCodesEnabled)
	assert.True(t, chainConfig.CheatCodeConfig.EnableFFI)
	assert.True(t, chainConfig.ForkConfig.ForkModeEnabled)
	assert.Equal(t, "https://example.com/rpc", chainConfig.ForkConfig.RpcUrl)
	assert.Equal(t, uint64(42), chainConfig.ForkConfig.RpcBlock)
}

func TestChainConfigDisablesForkWhenNoForkURL(t *testing.T) {
	cfg := DefaultConfig()
	chainConfig, err := cfg.ChainConfig()
	assert.NoError(t, err)
	assert.False(t, chainConfig.ForkConfig.ForkModeEnabled)
}
