package inventory

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	httpDelivery "github.com/tair/repair-manager/internal/inventory/delivery/http"
	"github.com/tair/repair-manager/internal/inventory/domain"
	"github.com/tair/repair-manager/internal/inventory/repository"
	"github.com/tair/repair-manager/internal/inventory/usecase/command"
)

// ProvideInventoryRepository provides the inventory repository
func ProvideInventoryRepository(db *gorm.DB) domain.Repository {
	return repository.NewTracingInventoryRepository(repository.NewGormInventoryRepository(db))
}

// RepositorySet is what the completion worker needs.
var RepositorySet = wire.NewSet(
	ProvideInventoryRepository,
	command.NewConsumePartsHandler,
)

var ProviderSet = wire.NewSet(
	ProvideInventoryRepository,
	httpDelivery.NewInventoryHandler,
)
