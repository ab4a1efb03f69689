package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Version is reported by the health endpoints.
var Version = "dev"

// BackendProbe checks that the entry backend answers.
type BackendProbe func(ctx context.Context) error

// HealthHandler provides liveness and readiness endpoints
type HealthHandler struct {
	probe        BackendProbe
	probeTimeout time.Duration
	logger       *slog.Logger
}

// NewHealthHandler creates a new health handler. probe may be nil, in which
// case readiness only reflects the process itself.
func NewHealthHandler(probe BackendProbe, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		probe:        probe,
		probeTimeout: 2 * time.Second,
		logger:       logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Backend   string    `json:"backend,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Live handles GET /health
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   Version,
	}, h.logger)
}

// Ready handles GET /ready. It answers 503 when the backend is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Version:   Version,
	}
	status := http.StatusOK

	if h.probe != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.probeTimeout)
		defer cancel()

		if err := h.probe(ctx); err != nil {
			h.logger.Warn("backend not ready", "error", err)
			resp.Status = "unavailable"
			resp.Backend = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Backend = "ok"
		}
	}

	WriteJSON(w, status, resp, h.logger)
}
