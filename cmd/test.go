package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/crytic/forge-core/cmd/exitcodes"
	"github.com/crytic/forge-core/executor"
	"github.com/crytic/forge-core/logging/colors"
	"github.com/crytic/forge-core/runner"
	"github.com/crytic/forge-core/runnerconfig"
	"github.com/spf13/cobra"
)

// testCmd represents the command provider for running a project's test suite.
var testCmd = &cobra.Command{
	Use:           "test",
	Short:         "Compiles a project and runs its test functions",
	Long:          `Compiles a project and runs its test functions`,
	Args:          cobra.NoArgs,
	RunE:          cmdRunTest,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	if err := addTestFlags(); err != nil {
		cmdLogger.Panic("Failed to initialize the test command", err)
	}
	rootCmd.AddCommand(testCmd)
}

// cmdRunTest executes the test command: it locates a project configuration (explicit --config, or forge.json in
// the working directory, falling back to defaults for DefaultCompilationPlatform), compiles the target, runs every
// discovered test function, and reports the outcome.
func cmdRunTest(cmd *cobra.Command, args []string) error {
	var projectConfig *runnerconfig.ProjectConfig

	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		cmdLogger.Error("Failed to run the test command", err)
		return err
	}

	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the test command", err)
			return err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	_, existenceError := os.Stat(configPath)

	if existenceError == nil {
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		projectConfig, err = runnerconfig.ReadProjectConfigFromFile(configPath, DefaultCompilationPlatform)
		if err != nil {
			cmdLogger.Error("Failed to run the test command", err)
			return err
		}
	}

	if configFlagUsed && existenceError != nil {
		cmdLogger.Error("Failed to run the test command", existenceError)
		return existenceError
	}

	if !configFlagUsed && existenceError != nil {
		cmdLogger.Warn(fmt.Sprintf("Unable to find the config file at %v, using the default project configuration for the %v compilation platform instead", configPath, DefaultCompilationPlatform))
		projectConfig, err = runnerconfig.GetDefaultProjectConfig(DefaultCompilationPlatform)
		if err != nil {
			cmdLogger.Error("Failed to run the test command", err)
			return err
		}
	}

	if err := updateProjectConfigWithTestFlags(cmd, projectConfig); err != nil {
		cmdLogger.Error("Failed to run the test command", err)
		return err
	}

	if err := projectConfig.Validate(); err != nil {
		cmdLogger.Error("Failed to run the test command", err)
		return err
	}

	if configFlagUsed || existenceError == nil {
		if err := os.Chdir(filepath.Dir(configPath)); err != nil {
			cmdLogger.Error("Failed to run the test command", err)
			return err
		}
	}

	cmdLogger.Info("Compiling target with the ", colors.Bold, projectConfig.Compilation.Platform, colors.Reset, " platform")
	compilations, _, err := projectConfig.Compilation.Compile()
	if err != nil {
		cmdLogger.Error("Failed to compile the target", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		cancel()
	}()

	testRunner := runner.New(projectConfig.Testing)

	var report *runner.Report
	for i := range compilations {
		compilationReport, err := testRunner.Run(ctx, &compilations[i])
		if err != nil {
			cmdLogger.Error("Failed to run tests", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
		if report == nil {
			report = compilationReport
		} else {
			report.Results = append(report.Results, compilationReport.Results...)
			report.Cancelled = report.Cancelled || compilationReport.Cancelled
		}
	}

	printReport(report)

	if report.Failed() > 0 {
		return exitcodes.NewErrorWithExitCode(nil, exitcodes.ExitCodeTestFailed)
	}

	return nil
}

// printReport writes a human-readable summary of every test result to the console.
func printReport(report *runner.Report) {
	for _, result := range report.Results {
		name := fmt.Sprintf("%s.%s", result.ContractName, result.FunctionName)
		switch result.Status {
		case executor.TestStatusPass:
			cmdLogger.Info(colors.GreenBold, "[PASS] ", colors.Reset, name)
		case executor.TestStatusFail:
			cmdLogger.Info(colors.RedBold, "[FAIL] ", colors.Reset, name, ": ", result.Reason)
		case executor.TestStatusSkipped:
			cmdLogger.Info(colors.YellowBold, "[SKIP] ", colors.Reset, name, ": ", result.Reason)
		}
	}

	cmdLogger.Info(fmt.Sprintf("Tests: %d passed, %d failed, %d skipped", report.Passed(), report.Failed(), report.Skipped()))
	if report.Cancelled {
		cmdLogger.Warn("Test run was cancelled before every contract finished")
	}
}
