package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	var role, pass string
	create := &cobra.Command{
		Use:   "create <username> <email>",
		Short: "Create an account with any role",
		Long: "Create an account with any role. When --password is omitted a random\n" +
			"password is generated and printed once.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), seedTimeout)
			defer cancel()

			res, err := c.open(ctx, true)
			if err != nil {
				return err
			}
			defer res.close(c)

			uid, generated, err := c.authService(res).CreateAccount(ctx, args[0], args[1], models.Role(role), pass)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created %s (%s) with role %s\n", args[0], uid, role)
			if pass == "" {
				fmt.Fprintf(out, "password: %s\n", generated)
			}
			return nil
		},
	}
	create.Flags().StringVar(&role, "role", string(models.RoleClient), "role: client, writer or admin")
	create.Flags().StringVar(&pass, "password", "", "account password, generated when empty")

	setRole := &cobra.Command{
		Use:   "set-role <username> <role>",
		Short: "Change the role of an account and end its sessions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), seedTimeout)
			defer cancel()

			res, err := c.open(ctx, true)
			if err != nil {
				return err
			}
			defer res.close(c)

			if err := c.authService(res).SetRole(ctx, args[0], models.Role(args[1])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(create, setRole)
	return cmd
}
