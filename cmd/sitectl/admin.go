package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"eduvista/site/internal/app/bootstrap"
	"eduvista/site/internal/domain/auth"
)

const adminPasswordEnv = "SITECTL_ADMIN_PASSWORD"

func newAdminCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin panel users",
	}
	cmd.AddCommand(newAdminCreateCmd(opts), newAdminListCmd(opts))
	return cmd
}

func newAdminCreateCmd(opts *rootOptions) *cobra.Command {
	var input auth.UserInput
	var role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin or editor account",
		Long: "Create an admin or editor account. The password is read from --password or,\n" +
			"when the flag is omitted, from the " + adminPasswordEnv + " environment variable.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input.Password == "" {
				input.Password = os.Getenv(adminPasswordEnv)
			}
			if input.Password == "" {
				return eris.Errorf("a password is required (--password or %s)", adminPasswordEnv)
			}
			input.Role = auth.Role(role)

			return opts.build(cmd.Context(), func(app bootstrap.Result, _ *logrus.Logger) error {
				user, err := app.Services.Auth.CreateUser(cmd.Context(), input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (id %d)\n", user.Role, user.Email, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "login email address")
	cmd.Flags().StringVar(&input.Name, "name", "", "display name")
	cmd.Flags().StringVar(&input.Password, "password", "", "login password (12-72 characters)")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleAdmin), "admin or editor")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAdminListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List admin panel users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.build(cmd.Context(), func(app bootstrap.Result, _ *logrus.Logger) error {
				users, err := app.Services.Auth.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				for _, user := range users {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", user.ID, user.Role, user.Email, user.Name)
				}
				return nil
			})
		},
	}
}
