package runnerconfig

import (
	forgeerrors "github.com/crytic/forge-core/errors"
)

// Validate checks the configuration for obviously unusable values before a run starts.
func (c *Config) Validate() error {
	if c.FuzzRuns == 0 {
		return forgeerrors.New(forgeerrors.InvalidConfig, "fuzzRuns must be greater than zero")
	}
	if c.Workers <= 0 {
		return forgeerrors.New(forgeerrors.InvalidConfig, "workers must be greater than zero")
	}
	if c.GasLimit == 0 {
		return forgeerrors.New(forgeerrors.InvalidConfig, "gasLimit must be greater than zero")
	}
	if c.ForkURL == "" && c.ForkBlock != 0 {
		return forgeerrors.New(forgeerrors.InvalidConfig, "forkBlock was set without a forkUrl")
	}
	return nil
}
