package main

import (
	"context"
	"errors"
	"fmt"

	"film_api/internal/models"
	"film_api/internal/service"

	"github.com/spf13/cobra"
)

func migrateCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// bootstrap migrates while opening the store
			a, err := bootstrap(cmd.Context(), *configDir)
			if err != nil {
				return err
			}
			a.log.Infow("migrations applied", "driver", a.cfg.DB.Driver)
			return a.close()
		},
	}
}

func createAdminCommand(configDir *string) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long: "Creates a user with role admin directly in the store. This is the\n" +
			"out-of-band way to mint the first administrator.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			a, err := bootstrap(cmd.Context(), *configDir)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			user, err := createAdmin(cmd.Context(), a.services, username, password)
			if err != nil {
				return err
			}
			a.log.Infow("admin created", "id", user.ID, "username", user.Username)
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %q (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// createAdmin registers an admin on behalf of the operator.
func createAdmin(ctx context.Context, services *service.Service, username, password string) (*models.User, error) {
	user, err := services.Register(service.WithOperator(ctx), username, password, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("create admin %q: %w", username, err)
	}
	return user, nil
}
