// Package app assembles the service from configuration: infrastructure
// clients, the domain modules and the servers that expose them.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	catalogHTTP "github.com/tair/repair-manager/internal/catalog/delivery/http"
	"github.com/tair/repair-manager/internal/config"
	inventoryHTTP "github.com/tair/repair-manager/internal/inventory/delivery/http"
	"github.com/tair/repair-manager/internal/inventory/usecase/command"
	pricingHTTP "github.com/tair/repair-manager/internal/pricing/delivery/http"
	"github.com/tair/repair-manager/internal/server"
	userHTTP "github.com/tair/repair-manager/internal/user/delivery/http"
	"github.com/tair/repair-manager/internal/worker"
	workflowHTTP "github.com/tair/repair-manager/internal/workflow/delivery/http"
	workorderHTTP "github.com/tair/repair-manager/internal/workorder/delivery/http"
	workorder "github.com/tair/repair-manager/internal/workorder/domain"
	"github.com/tair/repair-manager/kafka"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/cache"
	"github.com/tair/repair-manager/pkg/database"
	"github.com/tair/repair-manager/pkg/logger"
	"github.com/tair/repair-manager/pkg/mailer"
	"github.com/tair/repair-manager/pkg/metrics"
	"github.com/tair/repair-manager/pkg/ratelimit"
)

// ProvideDatabase opens the configured database.
func ProvideDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := database.NewGormConnection(database.Config{
		Driver:          cfg.DB.Driver,
		Host:            cfg.DB.Host,
		Port:            cfg.DB.Port,
		User:            cfg.DB.User,
		Password:        cfg.DB.Password,
		DBName:          cfg.DB.Name,
		SSLMode:         cfg.DB.SSLMode,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// ProvideRedis connects to Redis. Without an address the client is nil and
// caching and rate limiting are disabled.
func ProvideRedis(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	client, err := cache.NewRedisClient(ctx, cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		logger.Logger.Warn().Msg("no Redis address configured, pricing cache and rate limiting disabled")
		return nil, func() {}, nil
	}
	return client, func() { client.Close() }, nil
}

// ProvideRegistry returns a registry with the Go runtime and process collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

func ProvideTokenManager(cfg *config.Config) *auth.TokenManager {
	return auth.NewTokenManager(auth.Config{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})
}

func ProvideLoginLimiter(cfg *config.Config, client *redis.Client) *ratelimit.Limiter {
	return ratelimit.New(client, "login", cfg.HTTP.LoginRateLimit, time.Minute)
}

// ProvidePublisher returns a Kafka publisher, or a no-op one without brokers.
func ProvidePublisher(cfg *config.Config) (kafka.EventPublisher, func(), error) {
	p, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	return p, func() { p.Close() }, nil
}

func ProvideMailer(cfg *config.Config) mailer.Sender {
	return mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}

// ProvideHealthChecker probes the database, which is critical, and Redis,
// which only degrades the service.
func ProvideHealthChecker(cfg *config.Config, db *gorm.DB, client *redis.Client) *server.HealthChecker {
	checker := server.NewHealthChecker(cfg.ServiceName, 3*time.Second)
	checker.Add("database", true, func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if client != nil {
		checker.Add("redis", false, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	return checker
}

// Handlers groups every HTTP handler mounted on the router.
type Handlers struct {
	Catalog   *catalogHTTP.CatalogHandler
	Workflow  *workflowHTTP.WorkflowHandler
	Pricing   *pricingHTTP.PricingHandler
	Inventory *inventoryHTTP.InventoryHandler
	User      *userHTTP.UserHandler
	WorkOrder *workorderHTTP.WorkOrderHandler
}

func (h *Handlers) registrars() []server.RouteRegistrar {
	return []server.RouteRegistrar{h.User, h.Catalog, h.Workflow, h.Pricing, h.Inventory, h.WorkOrder}
}

// ProvideServer builds the HTTP and gRPC servers.
func ProvideServer(cfg *config.Config, handlers *Handlers, health *server.HealthChecker, reg *prometheus.Registry, tokens *auth.TokenManager) *server.Server {
	router := server.NewRouter(server.MiddlewareConfig{
		EnableTracing:   cfg.Tracing.Enabled,
		TimeoutDuration: cfg.HTTP.Timeout,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
	}, health, reg, handlers.registrars()...)

	grpcServer, grpcHealth := server.NewGRPCServer(tokens)

	return &server.Server{
		HTTP: &http.Server{
			Addr:              ":" + cfg.HTTP.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		GRPC:       grpcServer,
		GRPCAddr:   ":" + cfg.GRPC.Port,
		Health:     health,
		GRPCHealth: grpcHealth,
	}
}

// Worker consumes work-order events.
type Worker struct {
	Consumer *kafka.Consumer
}

// ProvideConsumer joins the configured consumer group on the events topic.
func ProvideConsumer(cfg *config.Config) (*kafka.Consumer, func(), error) {
	c, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{cfg.Kafka.Topic})
	if err != nil {
		return nil, nil, err
	}
	return c, func() { c.Close() }, nil
}

func ProvideCompletionHandler(cfg *config.Config, refs workorder.References, consume *command.ConsumePartsHandler, mail mailer.Sender) *worker.CompletionHandler {
	return worker.NewCompletionHandler(refs, consume, mail, cfg.SMTP.AlertTo)
}

func ProvideWorker(consumer *kafka.Consumer, completion *worker.CompletionHandler) *Worker {
	completion.Register(consumer)
	return &Worker{Consumer: consumer}
}

// InfraSet holds the clients shared by every entry point.
var InfraSet = wire.NewSet(
	ProvideDatabase,
	ProvideRedis,
	ProvideRegistry,
	ProvideMetrics,
	ProvideTokenManager,
	ProvideLoginLimiter,
	ProvidePublisher,
	ProvideMailer,
)
