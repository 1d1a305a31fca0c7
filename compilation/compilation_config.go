package compilation

import (
	"encoding/json"
	"fmt"

	"github.com/crytic/forge-core/compilation/platforms"
	"github.com/crytic/forge-core/compilation/types"
)

// CompilationConfig names a compilation platform and carries its platform-specific configuration as a raw JSON
// message, so a project configuration file can embed any supported platform's settings without this package
// needing a concrete type for each one.
type CompilationConfig struct {
	// Platform identifies which compilation platform PlatformConfig should be decoded against.
	Platform string `json:"platform"`

	// PlatformConfig holds the platform-specific configuration, decoded lazily in Compile.
	PlatformConfig *json.RawMessage `json:"platformConfig"`
}

// NewCompilationConfig returns a CompilationConfig carrying default settings for the given platform identifier.
func NewCompilationConfig(platform string) (*CompilationConfig, error) {
	if !IsSupportedCompilationPlatform(platform) {
		return nil, fmt.Errorf("could not get default compilation config: platform '%s' is unsupported", platform)
	}
	return NewCompilationConfigFromPlatformConfig(GetDefaultPlatformConfig(platform))
}

// NewCompilationConfigFromPlatformConfig wraps a concrete platforms.PlatformConfig in a generic CompilationConfig.
func NewCompilationConfigFromPlatformConfig(platformConfig platforms.PlatformConfig) (*CompilationConfig, error) {
	b, err := json.Marshal(platformConfig)
	if err != nil {
		return nil, err
	}
	raw := (*json.RawMessage)(&b)
	return &CompilationConfig{Platform: platformConfig.Platform(), PlatformConfig: raw}, nil
}

// GetPlatformConfig decodes PlatformConfig into the concrete type registered for Platform.
func (c *CompilationConfig) GetPlatformConfig() (platforms.PlatformConfig, error) {
	if !IsSupportedCompilationPlatform(c.Platform) {
		return nil, fmt.Errorf("could not decode compilation config: platform '%s' is unsupported", c.Platform)
	}
	platformConfig := GetDefaultPlatformConfig(c.Platform)
	if c.PlatformConfig != nil {
		if err := json.Unmarshal(*c.PlatformConfig, platformConfig); err != nil {
			return nil, err
		}
	}
	return platformConfig, nil
}

// SetTarget updates the compilation target of the wrapped platform-specific configuration.
func (c *CompilationConfig) SetTarget(target string) error {
	platformConfig, err := c.GetPlatformConfig()
	if err != nil {
		return err
	}
	platformConfig.SetTarget(target)
	return c.setPlatformConfig(platformConfig)
}

func (c *CompilationConfig) setPlatformConfig(platformConfig platforms.PlatformConfig) error {
	b, err := json.Marshal(platformConfig)
	if err != nil {
		return err
	}
	raw := (*json.RawMessage)(&b)
	c.PlatformConfig = raw
	return nil
}

// Compile decodes the wrapped platform-specific configuration and invokes its Compile method.
func (c *CompilationConfig) Compile() ([]types.Compilation, string, error) {
	platformConfig, err := c.GetPlatformConfig()
	if err != nil {
		return nil, "", err
	}
	return platformConfig.Compile()
}
