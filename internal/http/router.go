package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/preston-bernstein/tabletennis-stats/internal/http/handlers"
	"github.com/preston-bernstein/tabletennis-stats/internal/http/middleware"
	"github.com/preston-bernstein/tabletennis-stats/internal/metrics"
)

// RouterConfig carries the cross-cutting pieces the router installs.
type RouterConfig struct {
	Logger      *slog.Logger
	Recorder    *metrics.Recorder
	CORSOrigins []string
	// Metrics is mounted at /metrics when non-nil.
	Metrics nethttp.Handler
}

// NewRouter registers HTTP routes on a chi router.
func NewRouter(h *handlers.Handler, cfg RouterConfig) nethttp.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logging(cfg.Logger, cfg.Recorder))
	r.Use(chimiddleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Get("/games", h.Games)
	r.Post("/games", h.AddGame)

	r.Get("/players", h.Players)
	r.Get("/players/{player}", h.Player)
	r.Get("/players/{player}/report", h.PlayerReport)
	r.Get("/players/{player}/chart", h.PlayerChart)

	r.Get("/head-to-head", h.HeadToHead)

	if cfg.Metrics != nil {
		r.Method(nethttp.MethodGet, "/metrics", cfg.Metrics)
	}
	return r
}
