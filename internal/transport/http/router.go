package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stress-shield-api/internal/config"
	"github.com/stress-shield-api/internal/transport/http/handler"
	appmiddleware "github.com/stress-shield-api/internal/transport/http/middleware"
	"github.com/stress-shield-api/internal/transport/ws"
)

// NewRouter builds and returns the application router. ctx bounds the
// rate limiter's background cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	limiter := appmiddleware.NewRateLimiter(ctx, cfg.RateLimitWindow, cfg.RateLimitMax, cfg.TrustedProxyHops)
	authMw := appmiddleware.Auth(deps.Verifier)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(deps.SessionSvc)
	userH := handler.NewUserHandler(deps.UserSvc, deps.SessionSvc)
	readingH := handler.NewReadingHandler(deps.IngestSvc, deps.HistorySvc)
	wsH := ws.NewHandler(deps.Hub, originChecker(cfg.AllowedOrigins), logger)

	r.Get("/health", healthH.Status)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(limiter.Limit)

		r.Post("/users", userH.Register)
		r.Post("/sessions/login", sessionH.Login)

		// Browsers cannot set headers on the upgrade request.
		r.With(appmiddleware.QueryAuth(deps.Verifier)).Get("/ws", wsH.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Post("/health/reading", readingH.Submit)
			r.Get("/health/history", readingH.History)
			r.Post("/health/history/export", readingH.Export)
			r.Get("/health/readings/{id}/interventions", readingH.Interventions)
			r.Get("/alerts", readingH.Alerts)
		})
	})

	return r
}

// originChecker mirrors the CORS allow-list for websocket upgrades.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return nil
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
