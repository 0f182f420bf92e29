package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"github.com/tair/repair-manager/pkg/logger"
)

const (
	shutdownTimeout     = 15 * time.Second
	healthCheckInterval = 30 * time.Second
)

// Server runs the HTTP API and the gRPC endpoint side by side.
type Server struct {
	HTTP     *http.Server
	GRPC     *grpc.Server
	GRPCAddr string

	// Health, when set with GRPCHealth, drives the gRPC health service.
	Health     *HealthChecker
	GRPCHealth *health.Server
}

// Run serves until ctx is cancelled or either listener fails, then shuts both
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Logger.Info().Str("addr", s.HTTP.Addr).Msg("HTTP server listening")
		if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.GRPC != nil {
		g.Go(func() error {
			lis, err := net.Listen("tcp", s.GRPCAddr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", s.GRPCAddr, err)
			}
			logger.Logger.Info().Str("addr", s.GRPCAddr).Msg("gRPC server listening")
			if err := s.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	if s.Health != nil && s.GRPCHealth != nil {
		g.Go(func() error {
			WatchHealth(ctx, s.Health, s.GRPCHealth, healthCheckInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Logger.Info().Msg("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if s.GRPC != nil {
			s.GRPC.GracefulStop()
		}
		if err := s.HTTP.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
