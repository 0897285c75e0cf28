package cmd

import (
	"github.com/spf13/cobra"

	"agreement-radar/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the agreements and key_dates tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := loadBase()
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := postgres.Migrate(db); err != nil {
			return err
		}
		log.Info().Msg("schema migrated")
		return nil
	},
}
