package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/tabletennis-stats/internal/app/stats"
	"github.com/preston-bernstein/tabletennis-stats/internal/config"
	"github.com/preston-bernstein/tabletennis-stats/internal/events"
	httpserver "github.com/preston-bernstein/tabletennis-stats/internal/http"
	"github.com/preston-bernstein/tabletennis-stats/internal/http/handlers"
	"github.com/preston-bernstein/tabletennis-stats/internal/logging"
	"github.com/preston-bernstein/tabletennis-stats/internal/metrics"
	"github.com/preston-bernstein/tabletennis-stats/internal/records"
	"github.com/preston-bernstein/tabletennis-stats/internal/store"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         *store.MemoryStore
	statsService  *stats.Service
	publisher     events.Publisher
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New loads both tables and wires the service, publisher and HTTP servers.
// It fails only when the persisted tables cannot be read.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(cfg, logger, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}

	csvStore := records.NewCSVStore(records.PathsIn(cfg.Records.DataDir, cfg.Records.GamesFile, cfg.Records.StatsFile))
	memoryStore, err := loadTables(csvStore, logger)
	if err != nil {
		return nil, err
	}

	tel := buildMetrics(cfg, logger, recorder)
	publisher := buildPublisher(context.Background(), cfg.Events, logger)
	statsSvc := stats.NewService(memoryStore, csvStore, publisher, tel.recorder, logger)

	httpSrv := buildHTTPServer(cfg, statsSvc, logger, httpserver.RouterConfig{
		Logger:      logger,
		Recorder:    tel.recorder,
		CORSOrigins: cfg.CORS,
		Metrics:     tel.inline,
	})

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       tel.recorder,
		store:         memoryStore,
		statsService:  statsSvc,
		publisher:     publisher,
		httpServer:    httpSrv,
		metricsServer: tel.server,
		metricsStop:   tel.shutdown,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, statsSvc *stats.Service, httpSrv httpServer, publisher events.Publisher) *Server {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Server{
		cfg:          cfg,
		logger:       logger,
		statsService: statsSvc,
		publisher:    publisher,
		httpServer:   httpSrv,
	}
}

func loadTables(csvStore *records.CSVStore, logger *slog.Logger) (*store.MemoryStore, error) {
	tables, err := csvStore.Load()
	if err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}
	paths := csvStore.Paths()
	if tables.Migrated {
		logging.Warn(logger, "stats table missing playoff series wins, defaulted to 0",
			logging.FieldFile, paths.Stats,
		)
	}
	logging.Info(logger, "tables loaded",
		logging.FieldFile, paths.Games,
		"games", len(tables.Games),
		"players", len(tables.Stats),
	)

	memoryStore := store.NewMemoryStore()
	memoryStore.Replace(tables.Games, tables.Stats)
	return memoryStore, nil
}

var eventsDial = func(ctx context.Context, url, stream string) (events.Publisher, error) {
	return events.Dial(ctx, url, stream)
}

// buildPublisher falls back to a no-op publisher when Redis is unset or unreachable.
func buildPublisher(ctx context.Context, cfg config.EventsConfig, logger *slog.Logger) events.Publisher {
	if !cfg.Enabled() {
		return events.Noop{}
	}
	pub, err := eventsDial(ctx, cfg.RedisURL, cfg.Stream)
	if err != nil {
		logging.Warn(logger, "event publisher unavailable, continuing without events", logging.FieldError, err.Error())
		return events.Noop{}
	}
	logging.Info(logger, "publishing game events", "stream", cfg.Stream)
	return events.NewRetryingPublisher(pub, logger, publishAttempts, publishBackoff)
}

func buildHTTPServer(cfg config.Config, statsSvc *stats.Service, logger *slog.Logger, routerCfg httpserver.RouterConfig) httpServer {
	handler := handlers.NewHandler(statsSvc, logger, nil)
	router := httpserver.NewRouter(handler, routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the HTTP servers, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	if s.logger != nil {
		s.logger.Info("http server starting", slog.String("addr", s.httpServer.Addr()))
	}
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	if s.logger != nil {
		s.logger.Info("metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	// In-flight requests have drained, so no more games can be published.
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil && s.logger != nil {
			s.logger.Warn("event publisher close failed", "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

// telemetry is what buildMetrics hands back. inline is set instead of server
// when metrics share the API port.
type telemetry struct {
	recorder *metrics.Recorder
	server   httpServer
	inline   http.Handler
	shutdown func(context.Context) error
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) telemetry {
	if recorder != nil {
		return telemetry{recorder: recorder}
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
		return telemetry{recorder: metrics.NewRecorder()}
	}

	tel := telemetry{recorder: rec, shutdown: shutdown}
	if handler == nil || !recCfg.Enabled {
		return tel
	}
	if recCfg.Port == "" || recCfg.Port == cfg.Port {
		tel.inline = handler
		return tel
	}
	tel.server = netHTTPServer{
		srv: &http.Server{
			Addr:              ":" + recCfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: readTimeout,
		},
	}
	return tel
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
