package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/memoru/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations. With --rollback it reverts the latest one.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	if err := r.database(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(r.db); err != nil {
			return err
		}
		version, _, err := shared.MigrationVersion(r.db)
		if err != nil {
			return fmt.Errorf("failed to read migration version: %w", err)
		}
		r.logger.Warn("rolled back latest migration", "version", version)
		return r.writePlain("✓ Rolled back to schema version %d\n", version)
	}

	version, applied, err := shared.MigrationVersion(r.db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s (schema version %d, %d migrations applied)\n", r.config.Database.Path, version, applied)
}

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if cmd.Bool("force") {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set oidc.issuer and oidc.client_id in %s\n", path)
	r.writePlain("2. Run 'memoru auth login' to sign in\n")
	return nil
}
