package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tair/repair-manager/internal/app"
	"github.com/tair/repair-manager/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume work-order events and apply completion side effects",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Kafka.Brokers) == 0 {
			return fmt.Errorf("the worker needs at least one Kafka broker (KAFKA_BROKERS)")
		}

		ctx, stop := signalContext()
		defer stop()

		w, cleanup, err := app.InitializeWorker(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize worker: %w", err)
		}
		defer cleanup()

		logger.Logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("starting worker")
		return w.Consumer.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
