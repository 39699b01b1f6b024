package main

import (
	"authcore/internal/infra/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := db.Migrate(cmd.Context(), a.db); err != nil {
			return err
		}
		a.log.Info().Msg("migration complete")
		return nil
	},
}
