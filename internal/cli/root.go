package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
	ExitNotFound     = 5
)

var rootCmd = &cobra.Command{
	Use:   "benchlinks [branch]",
	Short: "Post benchmark artifact links to a pull request",
	Long: "benchlinks finds the latest completed CI run on a branch and on the reference branch, " +
		"builds download links for each run's first artifact, prints them, and posts them as a " +
		"comment on the branch's pull request.\n\n" +
		"A branch named like a subcommand (annotate, config, completion, help, version) runs that " +
		"subcommand instead. Use \"benchlinks annotate <branch>\" or \"benchlinks -- <branch>\" " +
		"to name any branch unambiguously.",
	Example: "  benchlinks feature-x\n" +
		"  benchlinks annotate version\n" +
		"  benchlinks -- config",
	Args:          branchArgs,
	RunE:          runAnnotate,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Run executes the root command and returns an exit code.
func Run(ctx context.Context) int {
	exitCode = ExitSuccess
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print benchlinks version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "benchlinks version %s\n", version)
	},
}

func init() {
	addAnnotateFlags(rootCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
