package pricing

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/config"
	httpDelivery "github.com/tair/repair-manager/internal/pricing/delivery/http"
	"github.com/tair/repair-manager/internal/pricing/domain"
	"github.com/tair/repair-manager/internal/pricing/repository"
	"github.com/tair/repair-manager/internal/pricing/usecase"
	"github.com/tair/repair-manager/pkg/cache"
	"github.com/tair/repair-manager/pkg/metrics"
)

// ProvidePricingRepository provides the traced pricing repository
func ProvidePricingRepository(db *gorm.DB) domain.Repository {
	return repository.NewTracingRepository(repository.NewGormRepository(db))
}

// ProvidePricingService caches resolutions in Redis when a client is configured.
func ProvidePricingService(repo domain.Repository, items catalog.Checker, client *redis.Client, cfg *config.Config, m *metrics.Metrics) *usecase.Service {
	return usecase.NewService(repo, items, cache.New(client, usecase.CachePrefix), cfg.Redis.PricingTTL, m)
}

var ProviderSet = wire.NewSet(
	ProvidePricingRepository,
	ProvidePricingService,
	httpDelivery.NewPricingHandler,
)
