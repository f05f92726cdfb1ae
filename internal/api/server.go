package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lutrii/payments/internal/api/handler"
	mw "github.com/lutrii/payments/internal/api/middleware"
	"github.com/lutrii/payments/internal/config"
	"github.com/lutrii/payments/internal/core"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	corePool *pgxpool.Pool
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, corePool *pgxpool.Pool, services *core.Services, cfg *config.Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		corePool: corePool,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Tokens
		token := handler.NewToken(s.services.TokenRegistry)
		r.Get("/tokens", token.List)
		r.Post("/tokens", token.Create)
		r.Get("/tokens/{id}", token.Get)
		r.Post("/tokens/{id}/disable", token.Disable)

		// Merchants
		merchant := handler.NewMerchant(s.services.Merchant)
		r.Get("/merchants", merchant.List)
		r.Post("/merchants", merchant.Create)
		r.Get("/merchants/{id}", merchant.Get)
		r.Put("/merchants/{id}", merchant.Update)

		// Subscriptions
		subscription := handler.NewSubscription(s.services.Subscription, s.services.Receipt)
		r.Post("/subscriptions", subscription.Create)
		r.Get("/subscriptions/{id}", subscription.Get)
		r.Get("/merchants/{id}/subscriptions", subscription.ListByMerchant)
		r.Post("/subscriptions/{id}/pause", subscription.Pause)
		r.Post("/subscriptions/{id}/resume", subscription.Resume)
		r.Post("/subscriptions/{id}/cancel", subscription.Cancel)
		r.Patch("/subscriptions/{id}/limits", subscription.UpdateLimits)
		r.Get("/subscriptions/{id}/receipts", subscription.ListReceipts)
		r.Get("/subscriptions/{id}/burns", subscription.ListBurns)

		// Payments
		payment := handler.NewPayment(s.services.Executor, s.services.Discount)
		r.Post("/payments/execute", payment.Execute)
		r.Post("/subscriptions/{id}/prepay", payment.Prepay)

		// Platform config
		platformCfg := handler.NewPlatformConfig(s.services.PlatformConfig)
		r.Get("/platform/config", platformCfg.Get)
		r.Post("/platform/pause", platformCfg.Pause)
		r.Post("/platform/unpause", platformCfg.Unpause)
		r.Put("/platform/volume-limit", platformCfg.SetVolumeLimit)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.corePool.Ping(ctx); err != nil {
		checks["core_db"] = err.Error()
		healthy = false
	} else {
		checks["core_db"] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(checks)
}
