package cmd

import (
	"github.com/crytic/forge-core/logging"
	"github.com/spf13/cobra"
)

var cmdLogger = logging.GlobalLogger.NewSubLogger("module", "cmd")

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "A Solidity smart contract test runner",
	Long:  "forge compiles a Solidity project and executes its unit and fuzz test functions against a simulated EVM backend",
}

func Execute() error {
	return rootCmd.Execute()
}