// Package compilation glues a named compilation platform to the generic platforms.PlatformConfig it produces, so a
// project configuration file can reference "crytic-compile" or "solc" by name and carry the platform-specific knobs
// alongside it without the rest of the module needing a type switch.
package compilation

import (
	"fmt"

	"github.com/crytic/forge-core/compilation/platforms"
)

// defaultPlatformConfigGenerator maps a platform identifier to a function producing a default configuration for
// that platform. Populated once in init.
var defaultPlatformConfigGenerator map[string]func() platforms.PlatformConfig

func init() {
	generators := []func() platforms.PlatformConfig{
		func() platforms.PlatformConfig { return platforms.NewSolcCompilationConfig("contract.sol") },
		func() platforms.PlatformConfig { return platforms.NewCryticCompileCompilationConfig(".") },
		func() platforms.PlatformConfig { return platforms.NewTruffleCompilationConfig(".") },
		func() platforms.PlatformConfig { return platforms.NewHardhatCompilationConfig(".") },
		func() platforms.PlatformConfig { return platforms.NewBrownieCompilationConfig(".") },
		func() platforms.PlatformConfig { return platforms.NewWaffleCompilationConfig(".") },
		func() platforms.PlatformConfig { return platforms.NewDappCompilationConfig(".") },
	}

	defaultPlatformConfigGenerator = make(map[string]func() platforms.PlatformConfig)
	for _, generator := range generators {
		platformConfig := generator()
		platformID := platformConfig.Platform()
		if _, exists := defaultPlatformConfigGenerator[platformID]; exists {
			panic(fmt.Errorf("the compilation platform '%s' is registered with more than one provider", platformID))
		}
		defaultPlatformConfigGenerator[platformID] = generator
	}
}

// GetSupportedCompilationPlatforms returns the platform identifiers registered in this package.
func GetSupportedCompilationPlatforms() []string {
	platformIDs := make([]string, 0, len(defaultPlatformConfigGenerator))
	for id := range defaultPlatformConfigGenerator {
		platformIDs = append(platformIDs, id)
	}
	return platformIDs
}

// IsSupportedCompilationPlatform returns whether the given platform identifier is registered in this package.
func IsSupportedCompilationPlatform(platform string) bool {
	_, ok := defaultPlatformConfigGenerator[platform]
	return ok
}

// GetDefaultPlatformConfig returns a default platforms.PlatformConfig for the given platform identifier. The
// caller must check IsSupportedCompilationPlatform first; an unsupported identifier returns nil.
func GetDefaultPlatformConfig(platform string) platforms.PlatformConfig {
	generator, ok := defaultPlatformConfigGenerator[platform]
	if !ok {
		return nil
	}
	return generator()
}
