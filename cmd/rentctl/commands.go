package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/rentroll/internal/auth"
	"github.com/stwalsh4118/rentroll/internal/config"
	"github.com/stwalsh4118/rentroll/internal/database"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/repository"
	"github.com/stwalsh4118/rentroll/internal/services"
)

const commandTimeout = time.Minute

// connect loads configuration and opens the database.
func connect(ctx context.Context) (*config.Config, *database.Database, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.NewPostgresPool(ctx, cfg.Database, logger.Nop())
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			_, db, err := connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db.DB.WithContext(ctx)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date")
			return nil
		},
	}
}

func createUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account, with a tenant record for TENANT users",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")

			if !models.Role(role).Valid() {
				return fmt.Errorf("invalid role %q", role)
			}
			if password == "" {
				password = auth.RandomPassword()
				fmt.Fprintf(cmd.OutOrStdout(), "Generated password: %s\n", password)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			cfg, db, err := connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			authService := services.NewAuthService(
				repository.NewUserRepository(db.DB),
				repository.NewTenantRepository(db.DB),
				auth.NewTokenManager(cfg.Auth.JWTSecret, time.Minute),
				auth.NewPasswordHasher(cfg.Auth.BcryptCost),
				auth.NewGoogleVerifier(""),
				logger.Nop(),
			)
			session, err := authService.Register(ctx, services.RegisterInput{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     models.Role(role),
			})
			if err != nil {
				return fmt.Errorf("failed to create user: %s", services.Message(err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %d <%s>\n", session.User.Role, session.User.ID, session.User.Email)
			return nil
		},
	}

	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("password", "", "Password (generated when empty)")
	cmd.Flags().String("role", string(models.RoleLandlord), "LANDLORD, TENANT or ADMIN")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
