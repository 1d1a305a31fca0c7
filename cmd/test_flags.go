package cmd

import (
	"fmt"

	"github.com/crytic/forge-core/runnerconfig"
	"github.com/spf13/cobra"
)

// addTestFlags adds the various flags supported by the test command.
func addTestFlags() error {
	defaultConfig := runnerconfig.DefaultConfig()

	testCmd.Flags().SortFlags = false

	testCmd.Flags().String("config", "", "path to config file")
	testCmd.Flags().String("target", "", TargetFlagDescription)
	testCmd.Flags().String("match", "", "regular expression restricting execution to matching \"Contract.Function\" names")
	testCmd.Flags().Bool("ffi", false, "allow test contracts to execute arbitrary host commands via the ffi cheatcode")
	testCmd.Flags().Uint32("fuzz-runs", 0,
		fmt.Sprintf("number of randomized inputs generated per fuzz test function (unless a config file is provided, default is %d)", defaultConfig.FuzzRuns))
	testCmd.Flags().Int64("fuzz-seed", 0, "seed for the fuzz driver's random provider, for reproducible runs")
	testCmd.Flags().String("fork-url", "", "JSON-RPC endpoint to pin the backend's state against")
	testCmd.Flags().Uint64("fork-block", 0, "block number fork reads are pinned to")
	testCmd.Flags().Int("workers", 0,
		fmt.Sprintf("number of test contracts to execute concurrently (unless a config file is provided, default is %d)", defaultConfig.Workers))
	testCmd.Flags().Bool("trace", false, "print the execution trace alongside every failing test")

	return nil
}

// updateProjectConfigWithTestFlags updates projectConfig.Testing with whatever flags were set on the command line.
func updateProjectConfigWithTestFlags(cmd *cobra.Command, projectConfig *runnerconfig.ProjectConfig) error {
	var err error
	testing := projectConfig.Testing

	if cmd.Flags().Changed("match") {
		testing.Filter, err = cmd.Flags().GetString("match")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("ffi") {
		testing.FFI, err = cmd.Flags().GetBool("ffi")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("fuzz-runs") {
		testing.FuzzRuns, err = cmd.Flags().GetUint32("fuzz-runs")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("fuzz-seed") {
		seed, err := cmd.Flags().GetInt64("fuzz-seed")
		if err != nil {
			return err
		}
		testing.FuzzSeed = &seed
	}

	if cmd.Flags().Changed("fork-url") {
		testing.ForkURL, err = cmd.Flags().GetString("fork-url")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("fork-block") {
		testing.ForkBlock, err = cmd.Flags().GetUint64("fork-block")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("workers") {
		testing.Workers, err = cmd.Flags().GetInt("workers")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("trace") {
		testing.Trace, err = cmd.Flags().GetBool("trace")
		if err != nil {
			return err
		}
	}

	return updateCompilationTarget(cmd, projectConfig)
}
