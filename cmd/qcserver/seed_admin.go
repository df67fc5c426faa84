package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/service"
	mongodb "github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/infrastructure/db/mongo"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the bootstrap administrator when no Admin exists",
	Long: `Creates the ADMIN001 account with the password from ADMIN_PASSWORD.
Nothing is changed when an Admin account is already present.`,
	RunE: runSeedAdmin,
}

func runSeedAdmin(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD is required")
	}

	ctx := cmd.Context()
	client, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := mongodb.NewUserRepository(client.Database(cfg.Mongo.UserDB))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	created, err := service.NewUserService(repo, nil, cfg.TokenTTL, log).EnsureAdmin(ctx, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintln(cmd.OutOrStdout(), "administrator created")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "an administrator already exists")
	}
	return nil
}
