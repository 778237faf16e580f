// Package cli defines the cobra command tree for the rentals backend.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"iasrentals/internal/infra/config"
	"iasrentals/internal/infra/obs"
)

var flagEnvFile string

// NewRootCmd creates the root command with the serve, seed and clear
// subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rentals",
		Short:         "Property rentals marketplace backend",
		Long:          "Serves the rentals HTTP API and manages its storage: seed demo data or wipe it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "optional dotenv file loaded before the environment")

	root.AddCommand(
		newServeCmd(),
		newSeedCmd(),
		newClearCmd(),
	)
	return root
}

// loadRuntime reads configuration and builds the process logger.
func loadRuntime() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
