package catalog

import (
	"github.com/google/wire"

	httpDelivery "github.com/tair/repair-manager/internal/catalog/delivery/http"
	"github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/catalog/repository"
	"github.com/tair/repair-manager/internal/catalog/usecase"
)

// ProviderSet builds the catalog service and handler. The repository also
// serves as the existence checker other modules validate references with.
var ProviderSet = wire.NewSet(
	repository.NewGormRepository,
	wire.Bind(new(domain.Repository), new(*repository.GormRepository)),
	wire.Bind(new(domain.Checker), new(*repository.GormRepository)),
	usecase.NewService,
	httpDelivery.NewCatalogHandler,
)
