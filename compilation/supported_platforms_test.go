package compilation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportedPlatformsAreAllRegistered(t *testing.T) {
	platforms := GetSupportedCompilationPlatforms()
	assert.ElementsMatch(t, []string{"solc", "crytic-compile", "truffle", "hardhat", "brownie", "waffle", "dapp"}, platforms)
}

func TestIsSupportedCompilationPlatform(t *testing.T) {
	assert.True(t, IsSupportedCompilationPlatform("crytic-compile"))
	assert.False(t, IsSupportedCompilationPlatform("not-a-platform"))
}

func TestGetDefaultPlatformConfig(t *testing.T) {
	platformConfig := GetDefaultPlatformConfig("solc")
	assert.NotNil(t, platformConfig)
	assert.Equal(t, "solc", platformConfig.Platform())

	assert.Nil(t, GetDefaultPlatformConfig("not-a-platform"))
}
