package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const healthProbeTimeout = 2 * time.Second

const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// Pinger checks connectivity of a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck names a dependency probe. A failing optional probe degrades
// the status; a failing required probe makes the instance unhealthy.
type HealthCheck struct {
	Name     string
	Probe    Pinger
	Optional bool
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	version string
	checks  []HealthCheck
	now     func() time.Time
}

func NewHealthController(version string, checks ...HealthCheck) *HealthController {
	return &HealthController{version: version, checks: checks, now: time.Now}
}

// Status probes every dependency concurrently. Only an unhealthy result
// answers 503 so load balancers keep a degraded instance in rotation.
func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.checks))
		status  = HealthHealthy
	)
	var g errgroup.Group
	for _, check := range h.checks {
		g.Go(func() error {
			err := check.Probe.Ping(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				results[check.Name] = "ok"
				return nil
			}
			results[check.Name] = "error: " + err.Error()
			switch {
			case !check.Optional:
				status = HealthUnhealthy
			case status == HealthHealthy:
				status = HealthDegraded
			}
			return nil
		})
	}
	_ = g.Wait()

	code := http.StatusOK
	if status == HealthUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, HealthResponse{
		Status:  status,
		Time:    h.now().UTC().Format(time.RFC3339),
		Version: h.version,
		Checks:  results,
	})
}

func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// healthChecks probes the database plus any file store or task queue that
// can report on itself.
func healthChecks(cfg RouterConfig) []HealthCheck {
	var checks []HealthCheck
	if cfg.Health != nil {
		checks = append(checks, HealthCheck{Name: "database", Probe: cfg.Health})
	}
	if files, ok := cfg.Files.(Pinger); ok {
		checks = append(checks, HealthCheck{Name: "storage", Probe: files, Optional: true})
	}
	if queue, ok := cfg.Tasks.(Pinger); ok {
		checks = append(checks, HealthCheck{Name: "tasks", Probe: queue, Optional: true})
	}
	return checks
}
