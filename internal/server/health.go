package server

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tair/repair-manager/pkg/logger"
	"github.com/tair/repair-manager/pkg/response"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// DependencyHealth represents the health status of a dependency
type DependencyHealth struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Critical bool   `json:"critical"`
	Latency  string `json:"latency"`
	Error    string `json:"error,omitempty"`
}

// Report is the overall health answered on /health.
type Report struct {
	Service      string             `json:"service"`
	Status       string             `json:"status"`
	Dependencies []DependencyHealth `json:"dependencies"`
	Uptime       string             `json:"uptime"`
}

type check struct {
	name     string
	critical bool
	fn       CheckFunc
}

// HealthChecker probes the registered dependencies concurrently.
type HealthChecker struct {
	service   string
	timeout   time.Duration
	checks    []check
	startTime time.Time
}

func NewHealthChecker(service string, timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HealthChecker{service: service, timeout: timeout, startTime: time.Now()}
}

// Add registers a probe. A failing critical probe makes the service unhealthy,
// any other failure only degraded.
func (h *HealthChecker) Add(name string, critical bool, fn CheckFunc) {
	h.checks = append(h.checks, check{name: name, critical: critical, fn: fn})
}

// Check runs every probe.
func (h *HealthChecker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make([]DependencyHealth, len(h.checks))
	var wg sync.WaitGroup
	for i, c := range h.checks {
		wg.Add(1)
		go func(i int, c check) {
			defer wg.Done()
			start := time.Now()
			res := DependencyHealth{Name: c.name, Critical: c.critical, Status: StatusHealthy}
			if err := c.fn(ctx); err != nil {
				res.Status = StatusUnhealthy
				res.Error = err.Error()
				logger.Warn(ctx).Err(err).Str("dependency", c.name).Msg("health check failed")
			}
			res.Latency = time.Since(start).String()
			results[i] = res
		}(i, c)
	}
	wg.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	return Report{
		Service:      h.service,
		Status:       overallStatus(results),
		Dependencies: results,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
	}
}

func overallStatus(results []DependencyHealth) string {
	status := StatusHealthy
	for _, r := range results {
		if r.Status == StatusHealthy {
			continue
		}
		if r.Critical {
			return StatusUnhealthy
		}
		status = StatusDegraded
	}
	return status
}

// ServeHTTP answers 503 only when a critical dependency is down.
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report := h.Check(r.Context())
	status := http.StatusOK
	if report.Status == StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, response.Response{Success: status == http.StatusOK, Message: report.Status, Data: report})
}
