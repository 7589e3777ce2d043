package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yukikurage/society-committee-api/internal/services"
	"go.uber.org/zap"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load designations and users from a YAML file",
	Long: `Load designations and users from a YAML file. Existing designations
(by name) and users (by email) are left untouched.

	server seed -f seed.yaml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := commonRun()
		if err != nil {
			return err
		}

		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("failed to open seed file: %w", err)
		}
		defer f.Close()

		file, err := services.ParseSeedFile(f)
		if err != nil {
			return err
		}

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		summary, err := a.seed.Apply(cmd.Context(), file)
		if err != nil {
			return err
		}

		logger.Info("seed applied",
			zap.Int("designations_created", summary.DesignationsCreated),
			zap.Int("designations_skipped", summary.DesignationsSkipped),
			zap.Int("users_created", summary.UsersCreated),
			zap.Int("users_skipped", summary.UsersSkipped),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed YAML file")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
