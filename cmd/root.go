package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the gamblelog command tree. Without a subcommand it serves the API.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gamblelog",
		Short: "Gambling record keeper with budgets, stats, P-Bank loans and tournaments",
		Long: `gamblelog serves a JSON API for logging gambling sessions.

It tracks budgets and goals, derives statistics and a play style,
keeps a P-Bank ledger with monthly interest, runs social tournaments
and simulates betting systems.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSimulateCommand(),
	)

	return rootCmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context())
		},
	}
}

// Execute runs the root command with ctx
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
