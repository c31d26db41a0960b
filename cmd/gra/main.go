// Package main provides the CLI entry point for the Gerrit review agent.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/richhaase/gerrit-review-agent/internal/domain"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := &cobra.Command{
		Use:   "gra",
		Short: "Gerrit review agent - AI-assisted code review for Gerrit changes",
		Long: `Run an AI agent against a Gerrit change. The agent reads the change
through a fixed set of Gerrit tools and leaves its review as draft comments,
which stay private until you publish them from the Gerrit UI.

Exit codes:
  0 - Review completed (or stopped early with partial drafts)
  2 - Error
  130 - Interrupted`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       buildVersionString(),
	}

	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		// Check if this is an exit code wrapper (not a real error)
		if exitErr, ok := err.(exitCodeError); ok {
			return exitErr.code.Int()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return domain.ExitError.Int()
	}

	return 0
}
