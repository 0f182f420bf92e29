package workorder

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/repair-manager/internal/config"
	httpDelivery "github.com/tair/repair-manager/internal/workorder/delivery/http"
	"github.com/tair/repair-manager/internal/workorder/domain"
	"github.com/tair/repair-manager/internal/workorder/repository"
	"github.com/tair/repair-manager/internal/workorder/usecase/command"
)

// ProvideWorkOrderRepository provides the traced work-order repository using
// the configured code prefix.
func ProvideWorkOrderRepository(db *gorm.DB, cfg *config.Config) domain.Repository {
	format := domain.DefaultCodeFormat
	format.Prefix = cfg.WorkOrders.CodePrefix
	return repository.NewTracingRepository(repository.NewGormRepository(db, format))
}

func ProvideReferences(db *gorm.DB) domain.References {
	return repository.NewGormReferences(db)
}

func ProvideOptions(cfg *config.Config) command.Options {
	return command.Options{EnforceWorkflowStatus: cfg.WorkOrders.EnforceWorkflowStatus}
}

var ProviderSet = wire.NewSet(
	ProvideWorkOrderRepository,
	ProvideReferences,
	ProvideOptions,
	httpDelivery.NewWorkOrderHandler,
)
