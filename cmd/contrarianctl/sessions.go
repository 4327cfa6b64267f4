package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *cli) sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage user sessions",
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), seedTimeout)
			defer cancel()

			res, err := c.open(ctx, false)
			if err != nil {
				return err
			}
			defer res.close(c)

			n, err := res.db.DeleteExpiredSessions(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d expired sessions deleted\n", n)
			return nil
		},
	}
	cmd.AddCommand(clearCmd)
	return cmd
}
