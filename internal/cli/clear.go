package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every user, property, visit and review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			be, err := openBackend(ctx, cfg, nil, logger)
			if err != nil {
				return err
			}
			defer be.Close(context.Background())
			if err := be.Clear(ctx); err != nil {
				return fmt.Errorf("clear: %w", err)
			}
			logger.Info("storage cleared", "driver", cfg.StorageDriver)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}
