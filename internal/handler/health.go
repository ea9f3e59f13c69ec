package handler

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/msgboard/msgboard/internal/handler/dto"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	db       HealthChecker
	cache    HealthChecker
	hostname string
	now      func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for cache when Redis is not configured. An empty hostname
// falls back to the operating system's.
func NewHealthHandler(db, cache HealthChecker, hostname string) *HealthHandler {
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	return &HealthHandler{
		db:       db,
		cache:    cache,
		hostname: hostname,
		now:      time.Now,
	}
}

// Health reports that the process is serving. It checks no dependencies.
//
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Hostname:  h.hostname,
	})
}

// Readyz checks all dependencies and returns 200 only if all are healthy.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{
		"postgres": check(ctx, h.db),
		"redis":    check(ctx, h.cache),
	}

	status := "ok"
	statusCode := http.StatusOK
	for _, result := range checks {
		if result != "ok" && result != "not configured" {
			status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, statusCode, dto.ReadyResponse{
		Status: status,
		Checks: checks,
	})
}

func check(ctx context.Context, c HealthChecker) string {
	if c == nil {
		return "not configured"
	}
	if err := c.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
