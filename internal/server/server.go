// Package server wires configuration into the running service and owns its
// lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/preston-bernstein/prospect-scout/internal/config"
	httpserver "github.com/preston-bernstein/prospect-scout/internal/http"
	"github.com/preston-bernstein/prospect-scout/internal/http/handlers"
	"github.com/preston-bernstein/prospect-scout/internal/logging"
	"github.com/preston-bernstein/prospect-scout/internal/metrics"
	"github.com/preston-bernstein/prospect-scout/internal/warmer"
)

var metricsSetup = metrics.Setup

// Warmer is the part of the cache warmer the server drives.
type Warmer interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() warmer.Status
}

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	components    *Components
	httpServer    httpServer
	metricsServer httpServer
	warmer        Warmer
	metricsStop   func(context.Context) error

	// listeners tracks the goroutines started by launchServer.
	listeners sync.WaitGroup
}

// New constructs the server from configuration.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(cfg, logger, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	components, err := NewComponents(cfg, logger, recorder)
	if err != nil {
		stopMetrics(metricsShutdown)
		return nil, err
	}
	return assemble(cfg, logger, recorder, components, metricsSrv, metricsShutdown)
}

func assemble(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder, components *Components, metricsSrv httpServer, metricsShutdown func(context.Context) error) (*Server, error) {
	w, err := warmer.New(components.Repository, warmer.Config{
		WarmOnStart: cfg.Cache.WarmOnStart,
		Schedule:    cfg.Cache.RefreshSchedule,
		Logger:      logger,
		Metrics:     recorder,
	})
	if err != nil {
		stopMetrics(metricsShutdown)
		_ = components.Close()
		return nil, fmt.Errorf("build warmer: %w", err)
	}

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		components:    components,
		httpServer:    buildHTTPServer(cfg, components, w, logger, recorder),
		metricsServer: metricsSrv,
		warmer:        w,
		metricsStop:   metricsShutdown,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, components *Components, httpSrv httpServer, w Warmer) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		components: components,
		httpServer: httpSrv,
		warmer:     w,
	}
}

func buildHTTPServer(cfg config.Config, components *Components, w *warmer.Warmer, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	handler := handlers.NewHandler(components.Repository, components.Saved, logger, w.Status)

	var admin *handlers.AdminHandler
	if token := strings.TrimSpace(cfg.AdminToken); token != "" {
		admin = handlers.NewAdminHandler(w, token, logger)
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Handler:        handler,
		Admin:          admin,
		Logger:         logger,
		Metrics:        recorder,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	return newNetHTTPServer(":"+cfg.Port, router)
}

// Run starts the warmer and HTTP server, then waits for context cancellation to shut down gracefully.
// It returns once every listener goroutine has exited.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.warmer.Start(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
	s.listeners.Wait()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer(&s.listeners, "http", s.httpServer, s.logger, func(error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer(&s.listeners, "metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if err := s.warmer.Stop(shutdownCtx); err != nil {
		logging.Error(s.logger, "failed to stop warmer", err)
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if err := s.components.Close(); err != nil {
		logging.Warn(s.logger, "saved set close failed", "error", err)
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
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
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		metricsSrv = newNetHTTPServer(":"+recCfg.Port, mux)
	}

	return rec, metricsSrv, shutdown
}

func stopMetrics(shutdown func(context.Context) error) {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = shutdown(ctx)
}

func launchServer(wg *sync.WaitGroup, name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		logging.Info(logger, "starting "+name+" server", "addr", srv.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", "error", err)
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
