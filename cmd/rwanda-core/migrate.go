package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nerrad567/rwanda/internal/infrastructure/config"
	"github.com/nerrad567/rwanda/internal/infrastructure/database"
	"github.com/nerrad567/rwanda/migrations"
)

var errMigrateUsage = errors.New("usage: rwanda-core migrate status|up|down")

// runMigrate inspects or changes the locations schema without starting the
// service. It reads the same configuration as run and uses database.path
// whether or not the store is enabled.
func runMigrate(ctx context.Context, args []string, w io.Writer) error {
	if len(args) != 1 {
		return errMigrateUsage
	}
	action := args[0]
	if action != "status" && action != "up" && action != "down" {
		return fmt.Errorf("%w: unknown action %q", errMigrateUsage, action)
	}

	if err := config.LoadEnvFiles(".env"); err != nil {
		return err
	}
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Database.Path == "" {
		return errors.New("database.path is not set")
	}

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-mostly command

	switch action {
	case "up":
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	case "down":
		applied, _, err := db.GetMigrationStatus(ctx, migrations.FS)
		if err != nil {
			return fmt.Errorf("reading migration status: %w", err)
		}
		if len(applied) == 0 {
			fmt.Fprintf(w, "no migrations applied to %s\n", db.Path())
			return nil
		}
		if err := db.MigrateDown(ctx, migrations.FS); err != nil {
			return fmt.Errorf("rolling back migration: %w", err)
		}
		fmt.Fprintf(w, "rolled back %s\n", applied[len(applied)-1].Version)
	}
	return printMigrationStatus(ctx, db, w)
}

func printMigrationStatus(ctx context.Context, db *database.DB, w io.Writer) error {
	applied, pending, err := db.GetMigrationStatus(ctx, migrations.FS)
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}

	fmt.Fprintf(w, "database: %s\n", db.Path())
	for _, r := range applied {
		fmt.Fprintf(w, "applied  %s  %s\n", r.Version, r.AppliedAt.Format(time.RFC3339))
	}
	for _, m := range pending {
		fmt.Fprintf(w, "pending  %s  %s\n", m.Version, m.Name)
	}
	return nil
}
