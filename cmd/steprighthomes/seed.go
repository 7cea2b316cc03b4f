package main

import (
	"context"
	"fmt"
	"os"

	"steprighthomes/internal/db"
	"steprighthomes/internal/seed"
	"steprighthomes/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Create the schema and sync the service catalog into Postgres",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cfg.DatabaseURL == "" {
			return fmt.Errorf("set DATABASE_URL")
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}

		logrus.Info("Seeding services...")
		if err := seed.SeedServices(ctx, store.NewServiceRepository(pool), os.Stdout); err != nil {
			return fmt.Errorf("failed to seed services: %w", err)
		}

		logrus.Info("Services seeded successfully")

		return nil
	},
}
