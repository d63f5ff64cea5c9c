package cmd

import (
	"log/slog"

	"github.com/crossban/xban/internal/config"
	"github.com/crossban/xban/internal/database"
	"github.com/crossban/xban/internal/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var downAll bool

	command := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			conf, errConfig := config.ReadStatic(cfgFile)
			if errConfig != nil {
				return errConfig
			}

			action := database.MigrationAction(database.MigrateUp)
			if downAll {
				action = database.MigrateDn
			}

			if errMigrate := database.Migrate(conf.DatabaseDSN, action); errMigrate != nil {
				slog.Error("Could not migrate schema", log.ErrAttr(errMigrate))

				return errMigrate
			}

			slog.Info("Migration complete")

			return nil
		},
	}

	command.Flags().BoolVarP(&downAll, "down", "d", false, "Fully reverts all migrations")

	return command
}
