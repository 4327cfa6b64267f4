package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/migrations"
)

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withMigrator(func(mg *migrations.Migrator) error {
				if err := mg.Up(); err != nil {
					return err
				}
				return printVersion(cmd, mg)
			})
		},
	}

	down := &cobra.Command{
		Use:   "down [n]",
		Short: "Roll back n migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			return c.withMigrator(func(mg *migrations.Migrator) error {
				if err := mg.Down(steps); err != nil {
					return err
				}
				return printVersion(cmd, mg)
			})
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withMigrator(func(mg *migrations.Migrator) error {
				return printVersion(cmd, mg)
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func (c *cli) withMigrator(fn func(mg *migrations.Migrator) error) error {
	mg, err := migrations.New(c.cfg.StorageConnectionString)
	if err != nil {
		return err
	}
	defer func() {
		if err := mg.Close(); err != nil {
			c.log.Warn("failed to close migrator", sl.Err(err))
		}
	}()
	return fn(mg)
}

func printVersion(cmd *cobra.Command, mg *migrations.Migrator) error {
	v, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d of %d, dirty: %t\n", v, mg.Latest(), dirty)
	return nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid number of steps %q", args[0])
	}
	return n, nil
}
