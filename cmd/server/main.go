package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yukikurage/society-committee-api/internal/config"
	"github.com/yukikurage/society-committee-api/internal/logging"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

const programName = "society-committee-api"

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Committee tenure lifecycle service",
	Long: `Manages the student society's current committee, ends tenures and
serves the archive of previous committees.`,
	SilenceUsage: true,
}

// commonRun loads configuration, builds the logger and sizes GOMAXPROCS.
func commonRun() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	logger = logger.With(zap.String("component", programName))

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof)); err != nil {
		logger.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}

	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
