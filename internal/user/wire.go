package user

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	httpDelivery "github.com/tair/repair-manager/internal/user/delivery/http"
	"github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/internal/user/repository"
	"github.com/tair/repair-manager/internal/user/usecase/command"
)

// ProvideUserRepository provides the user repository
func ProvideUserRepository(db *gorm.DB) domain.UserRepository {
	return repository.NewTracingRepository(repository.NewGormUserRepository(db))
}

// ProvideGroupChecker narrows the catalog checker to group lookups.
func ProvideGroupChecker(c catalog.Checker) command.GroupChecker {
	return c
}

var ProviderSet = wire.NewSet(
	ProvideUserRepository,
	ProvideGroupChecker,
	httpDelivery.NewUserHandler,
)
