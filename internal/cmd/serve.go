package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tair/repair-manager/internal/app"
	"github.com/tair/repair-manager/pkg/logger"
	"github.com/tair/repair-manager/pkg/tracing"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the gRPC health endpoint",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run schema migrations before serving")
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	tp, err := tracing.InitTracer(tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.ServiceName,
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("failed to flush traces")
		}
	}()

	if autoMigrate {
		db, cleanup, err := app.ProvideDatabase(cfg)
		if err != nil {
			return err
		}
		err = app.Migrate(ctx, db)
		cleanup()
		if err != nil {
			return err
		}
	}

	srv, cleanup, err := app.InitializeServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer cleanup()

	logger.Logger.Info().
		Str("environment", cfg.Environment).
		Str("http_port", cfg.HTTP.Port).
		Str("grpc_port", cfg.GRPC.Port).
		Bool("enforce_workflow_status", cfg.WorkOrders.EnforceWorkflowStatus).
		Msg("starting repair manager")

	return srv.Run(ctx)
}
