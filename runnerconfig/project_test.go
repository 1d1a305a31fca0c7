package runnerconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDefaultProjectConfigDefaultsPlatform(t *testing.T) {
	projectConfig, err := GetDefaultProjectConfig("")
	assert.NoError(t, err)
	assert.Equal(t, "crytic-compile", projectConfig.Compilation.Platform)
	assert.NoError(t, projectConfig.Validate())
}

func TestGetDefaultProjectConfigUnsupportedPlatform(t *testing.T) {
	_, err := GetDefaultProjectConfig("not-a-real-platform")
	assert.Error(t, err)
}

func TestProjectConfigWriteAndReadRoundTrip(t *testing.T) {
	projectConfig, err := GetDefaultProjectConfig("crytic-compile")
	assert.NoError(t, err)
	projectConfig.Testing.FuzzRuns = 1234
	assert.NoError(t, projectConfig.Compilation.SetTarget("./contracts"))

	path := filepath.Join(t.TempDir(), "forge.json")
	assert.NoError(t, projectConfig.WriteToFile(path))

	readBack, err := ReadProjectConfigFromFile(path, "crytic-compile")
	assert.NoError(t, err)
	assert.Equal(t, uint32(1234), readBack.Testing.FuzzRuns)

	platformConfig, err := readBack.Compilation.GetPlatformConfig()
	assert.NoError(t, err)
	assert.Equal(t, "./contracts", platformConfig.GetTarget())
}
