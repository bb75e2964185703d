package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"homologation/internal/auth"
	"homologation/pkg/database"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts in the local database",
	}
	cmd.AddCommand(newUsersAddCommand(ctx))
	cmd.AddCommand(newUsersSetRoleCommand(ctx))
	return cmd
}

func openDB(ctx *commandContext) (*sql.DB, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return database.OpenMigrated(database.Config{Path: cfg.Database.Path})
}

func newUsersAddCommand(ctx *commandContext) *cobra.Command {
	var username, email, password, role string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := auth.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q", role)
			}
			u, err := auth.NewUser(username, email, password, r)
			if err != nil {
				return err
			}

			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := auth.NewRepo(db).CreateUser(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", u.Username, u.Role, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (8-72 chars)")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleTrial), "trial, standard or admin")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUsersSetRoleCommand(ctx *commandContext) *cobra.Command {
	var username, role string

	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change an account's role and revoke its tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := auth.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q", role)
			}

			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := auth.NewRepo(db)
			u, err := repo.GetByUsername(cmd.Context(), username)
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("%w: %s", auth.ErrUserNotFound, username)
			}
			if err := repo.SetRole(cmd.Context(), u.ID, r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Username, r)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name")
	cmd.Flags().StringVar(&role, "role", "", "trial, standard or admin")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
