package workflow

import (
	"github.com/google/wire"

	httpDelivery "github.com/tair/repair-manager/internal/workflow/delivery/http"
	"github.com/tair/repair-manager/internal/workflow/domain"
	"github.com/tair/repair-manager/internal/workflow/repository"
	"github.com/tair/repair-manager/internal/workflow/usecase"
)

var ProviderSet = wire.NewSet(
	repository.NewGormRepository,
	wire.Bind(new(domain.Repository), new(*repository.GormRepository)),
	usecase.NewService,
	httpDelivery.NewWorkflowHandler,
)
