package cmd

import (
	"github.com/crytic/forge-core/runnerconfig"
	"github.com/spf13/cobra"
)

// updateCompilationTarget will update the compilation target in the projectConfig if the --target flag is used in the
// command
func updateCompilationTarget(cmd *cobra.Command, projectConfig *runnerconfig.ProjectConfig) error {
	// If --target was used
	if cmd.Flags().Changed("target") {
		newTarget, err := cmd.Flags().GetString("target")
		if err != nil {
			return err
		}

		if err := projectConfig.Compilation.SetTarget(newTarget); err != nil {
			return err
		}
	}
	return nil
}
