package compilation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCompilationConfigRejectsUnsupportedPlatform(t *testing.T) {
	_, err := NewCompilationConfig("not-a-platform")
	assert.Error(t, err)
}

func TestNewCompilationConfigRoundTripsPlatformConfig(t *testing.T) {
	compilationConfig, err := NewCompilationConfig("crytic-compile")
	assert.NoError(t, err)
	assert.Equal(t, "crytic-compile", compilationConfig.Platform)

	platformConfig, err := compilationConfig.GetPlatformConfig()
	assert.NoError(t, err)
	assert.Equal(t, "crytic-compile", platformConfig.Platform())
}

func TestSetTargetUpdatesWrappedPlatformConfig(t *testing.T) {
	compilationConfig, err := NewCompilationConfig("crytic-compile")
	assert.NoError(t, err)

	assert.NoError(t, compilationConfig.SetTarget("./my-contracts"))

	platformConfig, err := compilationConfig.GetPlatformConfig()
	assert.NoError(t, err)
	assert.Equal(t, "./my-contracts", platformConfig.GetTarget())
}
