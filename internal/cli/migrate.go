package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yourusername/skillcert-api/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
			return err
		}

		version, dirty, err := database.MigrationVersion(db, cfg.Database.MigrationsPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dirty=%t)\n", version, dirty)
		return nil
	},
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Force the migration version to clean a dirty state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := parseMigrationVersion(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		if err := database.ForceMigrationVersion(db, cfg.Database.MigrationsPath, version); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migration version forced to %d\n", version)
		return nil
	},
}

// parseMigrationVersion допускает -1 (состояние "нет миграций" в golang-migrate)
func parseMigrationVersion(raw string) (int, error) {
	version, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid migration version %q", raw)
	}
	if version < -1 {
		return 0, fmt.Errorf("migration version must be >= -1, got %d", version)
	}
	return version, nil
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateForceCmd)
}
