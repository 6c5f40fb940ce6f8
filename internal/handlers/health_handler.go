package handlers

import (
	"context"
	"net/http"
	"time"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// DatabasePinger abstracts the datastore liveness check so the handler works
// against both the Mongo client and the in-memory demo store.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a plain function to DatabasePinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves the liveness/readiness probe.
type HealthHandler struct {
	pinger  DatabasePinger
	started time.Time
}

func NewHealthHandler(pinger DatabasePinger) *HealthHandler {
	return &HealthHandler{pinger: pinger, started: time.Now()}
}

// Handle handles GET /health.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "connected"
	status := "ok"
	code := http.StatusOK
	if err := h.pinger.Ping(ctx); err != nil {
		dbStatus = "unreachable"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]interface{}{
		"status":   status,
		"database": dbStatus,
		"uptime":   time.Since(h.started).String(),
		"version":  Version,
	})
}
