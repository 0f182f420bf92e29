package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// RouteRegistrar is implemented by every domain HTTP handler.
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// NewRouter mounts the operational endpoints and every domain handler behind
// the shared middleware chain.
func NewRouter(cfg MiddlewareConfig, health *HealthChecker, gatherer prometheus.Gatherer, handlers ...RouteRegistrar) http.Handler {
	router := mux.NewRouter()
	RegisterMiddlewares(router, cfg)

	if health != nil {
		router.Handle("/health", health).Methods(http.MethodGet)
	}
	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}
	return CORS(cfg.CORSOrigins, router)
}
