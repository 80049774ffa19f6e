package handlers

import (
	"log/slog"
	nethttp "net/http"

	"github.com/preston-bernstein/tabletennis-stats/internal/app/stats"
)

// maxBodyBytes bounds POST /games payloads.
const maxBodyBytes = 1 << 20

// Handler wires HTTP routes to the stats service.
type Handler struct {
	svc     *stats.Service
	logger  *slog.Logger
	readyFn func() bool
}

// NewHandler constructs a Handler. A nil readyFn reports ready unconditionally.
func NewHandler(svc *stats.Service, logger *slog.Logger, readyFn func() bool) *Handler {
	return &Handler{
		svc:     svc,
		logger:  logger,
		readyFn: readyFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.readyFn != nil && !h.readyFn() {
		writeError(w, r, nethttp.StatusServiceUnavailable, "not ready", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
}
