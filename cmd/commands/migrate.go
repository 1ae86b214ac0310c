package commands

import (
	"github.com/spf13/cobra"

	"github.com/go-petr/lifemanager/pkg/dbpkg"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(dbpkg.Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(dbpkg.Down)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func runMigrate(direction dbpkg.Direction) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	return dbpkg.Migrate(a.db, a.config.MigrationURL, direction, a.logger)
}
