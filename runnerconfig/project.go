package runnerconfig

import (
	"encoding/json"
	"os"

	"github.com/crytic/forge-core/compilation"
	"github.com/pkg/errors"
)

// ProjectConfig is the on-disk configuration for a test run: which compilation platform produces the artifacts
// under test, and the run settings (Config) applied once they're compiled.
type ProjectConfig struct {
	// Compilation describes how to obtain compiled artifacts for the project under test.
	Compilation *compilation.CompilationConfig `json:"compilation"`

	// Testing describes how the discovered test functions should be executed.
	Testing *Config `json:"testing"`
}

// GetDefaultProjectConfig returns a ProjectConfig with default Testing settings and a default CompilationConfig
// for the given platform identifier. An empty platform falls back to crytic-compile.
func GetDefaultProjectConfig(platform string) (*ProjectConfig, error) {
	if platform == "" {
		platform = "crytic-compile"
	}
	compilationConfig, err := compilation.NewCompilationConfig(platform)
	if err != nil {
		return nil, err
	}
	return &ProjectConfig{
		Compilation: compilationConfig,
		Testing:     DefaultConfig(),
	}, nil
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from path, seeding defaults for the given
// platform identifier before applying whatever the file overrides.
func ReadProjectConfigFromFile(path string, defaultPlatform string) (*ProjectConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	projectConfig, err := GetDefaultProjectConfig(defaultPlatform)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(b, projectConfig); err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to path in a JSON-serialized format.
func (p *ProjectConfig) WriteToFile(path string) error {
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, b, 0644))
}

// Validate checks the ProjectConfig for obviously unusable values before a run starts.
func (p *ProjectConfig) Validate() error {
	return p.Testing.Validate()
}
