package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rightswatch/config"
	"rightswatch/core/monitoring"
	"rightswatch/core/rbac"
	"rightswatch/core/store"
	"rightswatch/core/uploads"
	"rightswatch/core/utils"
)

// BackgroundWorker is started with the server and stopped on shutdown.
type BackgroundWorker interface {
	StartWithContext(ctx context.Context) error
	StopWithContext(ctx context.Context) error
}

type ServerDeps struct {
	Cases         store.CasesStore
	StatusHistory store.StatusHistoryStore
	Reports       store.ReportsStore
	Analytics     store.AnalyticsStore
	Individuals   store.IndividualsStore
	Uploads       *uploads.Storage
	Policy        *rbac.Policy
	Metrics       *monitoring.Metrics
	// Health reports whether the backing store answers.
	Health func(ctx context.Context) error
}

type Server struct {
	cfg        *config.AppConfig
	logger     *utils.Logger
	router     chi.Router
	httpServer *http.Server

	cases         store.CasesStore
	statusHistory store.StatusHistoryStore
	reports       store.ReportsStore
	analytics     store.AnalyticsStore
	individuals   store.IndividualsStore
	uploads       *uploads.Storage
	policy        *rbac.Policy
	metrics       *monitoring.Metrics
	health        func(ctx context.Context) error
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *utils.Logger) *Server {
	s := &Server{
		cfg:           cfg,
		logger:        logger,
		cases:         deps.Cases,
		statusHistory: deps.StatusHistory,
		reports:       deps.Reports,
		analytics:     deps.Analytics,
		individuals:   deps.Individuals,
		uploads:       deps.Uploads,
		policy:        deps.Policy,
		metrics:       deps.Metrics,
		health:        deps.Health,
	}
	if s.metrics == nil {
		s.metrics = monitoring.NewMetrics()
	}
	if s.uploads == nil {
		s.uploads = uploads.NewStorage(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	}
	s.router = s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}
	return s
}

func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
