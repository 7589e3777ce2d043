package main

import (
	"github.com/spf13/cobra"
	"github.com/yukikurage/society-committee-api/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := commonRun()
		if err != nil {
			return err
		}

		database.SetLogger(logger.Named("database"))
		if err := database.Connect(cfg); err != nil {
			return err
		}
		defer func() {
			_ = database.Close()
			_ = logger.Sync()
		}()

		return database.Migrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
