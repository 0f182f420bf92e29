//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/tair/repair-manager/internal/catalog"
	"github.com/tair/repair-manager/internal/config"
	"github.com/tair/repair-manager/internal/inventory"
	"github.com/tair/repair-manager/internal/pricing"
	"github.com/tair/repair-manager/internal/server"
	"github.com/tair/repair-manager/internal/user"
	"github.com/tair/repair-manager/internal/workflow"
	"github.com/tair/repair-manager/internal/workorder"
)

// InitializeServer builds the HTTP and gRPC servers with all dependencies
func InitializeServer(ctx context.Context, cfg *config.Config) (*server.Server, func(), error) {
	wire.Build(
		InfraSet,
		catalog.ProviderSet,
		workflow.ProviderSet,
		pricing.ProviderSet,
		inventory.ProviderSet,
		user.ProviderSet,
		workorder.ProviderSet,
		wire.Struct(new(Handlers), "*"),
		ProvideHealthChecker,
		ProvideServer,
	)
	return nil, nil, nil
}

// InitializeWorker builds the event consumer with all dependencies
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	wire.Build(
		ProvideDatabase,
		ProvideMailer,
		ProvideConsumer,
		workorder.ProvideReferences,
		inventory.RepositorySet,
		ProvideCompletionHandler,
		ProvideWorker,
	)
	return nil, nil, nil
}
