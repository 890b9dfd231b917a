// Package server exposes the HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cost-optimizer/internal/auth"
	"cost-optimizer/internal/common/config"
	stderrors "cost-optimizer/internal/common/errors"
	"cost-optimizer/internal/common/logger"
	"cost-optimizer/internal/models"
	"cost-optimizer/internal/pricing"
)

// CostService is the analysis surface the handlers depend on.
type CostService interface {
	Summary(ctx context.Context) (*models.CostSummary, error)
	Resources(ctx context.Context) ([]models.Resource, error)
	Recommendations(ctx context.Context) ([]models.Recommendation, error)
	RecommendationsSummary(ctx context.Context) (models.SavingsSummary, error)
	Trends(ctx context.Context, days int) (*models.CostAnalysis, error)
	History(ctx context.Context, limit int) ([]models.CostAnalysis, error)
}

// UserStore is the account surface the auth handlers depend on.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id string) (*models.User, error)
}

// Pinger reports dependency health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	svc     CostService
	users   UserStore
	auth    *auth.Manager
	catalog *pricing.Catalog
	errs    *stderrors.HTTPHandler
	pingers map[string]Pinger
	logger  logger.Logger
}

func New(
	cfg *config.Config,
	svc CostService,
	users UserStore,
	authManager *auth.Manager,
	pingers map[string]Pinger,
	log logger.Logger,
) *Server {
	s := &Server{
		cfg:     cfg,
		router:  chi.NewRouter(),
		svc:     svc,
		users:   users,
		auth:    authManager,
		catalog: pricing.IndiaCatalog(),
		errs:    stderrors.NewHTTPHandler(log),
		pingers: pingers,
		logger:  log.WithFields(map[string]interface{}{"component": "server"}),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(s.requestMetrics)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/summary", s.handleSummary)
		r.Get("/pricing/india", s.handlePricing)

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleMe)
			r.Get("/recommendations", s.handleRecommendations)
			r.Get("/recommendations/summary", s.handleRecommendationsSummary)
			r.Get("/resources", s.handleResources)
			r.Get("/analysis/costs", s.handleAnalysisCosts)
			r.Get("/analysis/history", s.handleAnalysisHistory)
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", map[string]interface{}{
			"address": s.server.Addr,
		})
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.logger.Info("shutting down", map[string]interface{}{
			"signal": sig.String(),
		})

		timeout := time.Duration(s.cfg.Server.ShutdownTimeout) * time.Millisecond
		if timeout <= 0 {
			timeout = 30 * time.Second
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}
