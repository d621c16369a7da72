package cmd

import (
	"fmt"
	"strconv"

	"gamblelog/config"
	"gamblelog/database"

	"github.com/spf13/cobra"
)

// migrator runs schema migrations against a database URL
type migrator struct {
	up     func(databaseURL string) error
	down   func(databaseURL string, steps int) error
	status func(databaseURL string) error
}

var defaultMigrator = migrator{
	up:     database.MigrateUp,
	down:   database.MigrateDown,
	status: database.MigrateStatus,
}

func newMigrateCommand() *cobra.Command {
	return newMigrateCommandWith(defaultMigrator, func() string {
		cfg := config.Get()
		setupLogging(cfg)
		return databaseURL(cfg)
	})
}

func newMigrateCommandWith(m migrator, url func() string) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return m.up(url())
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1 step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					parsed, err := strconv.Atoi(args[0])
					if err != nil || parsed <= 0 {
						return fmt.Errorf("invalid steps %q: must be a positive integer", args[0])
					}
					steps = parsed
				}
				return m.down(url(), steps)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return m.status(url())
			},
		},
	)

	return migrateCmd
}
