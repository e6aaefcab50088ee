package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	write := shared.CreateConfigFile
	if cmd.Bool("force") {
		write = shared.WriteConfigFile
	} else if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, configPath)
	}

	if err := write(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("%s\n", r.styles.OK("✓ Wrote %s", configPath))
	r.writePlain("%s\n", r.styles.Help("Set provider.name and the matching credentials, then run `tapedeck setup database`."))
	return nil
}

// loadSetupConfig loads path, writing the example config there first when it does not exist.
// Any failure falls back to defaults so setup can still create the database.
func (r *Runner) loadSetupConfig(path string) *shared.Config {
	if _, err := os.Stat(path); err != nil {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			return shared.DefaultConfig()
		}
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return shared.DefaultConfig()
	}
	return config
}

// SetupDatabase creates the history database and applies pending migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.loadSetupConfig(cmd.String("config"))
	config.ApplyEnv()

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.writePlain("%s\n", r.styles.OK("✓ Rolled back latest migration"))
		return nil
	}

	pending, err := shared.PendingMigrations(db)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		r.writePlain("%s\n", r.styles.Help("Database %s is up to date", config.Database.Path))
		return nil
	}

	for _, m := range pending {
		r.writePlain("   applying %04d %s\n", m.Version, m.Name)
	}
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlain("%s\n", r.styles.OK("✓ Database ready: %s", config.Database.Path))
	return nil
}
