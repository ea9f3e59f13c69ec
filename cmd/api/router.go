package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/msgboard/msgboard/internal/config"
	"github.com/msgboard/msgboard/internal/handler"
	"github.com/msgboard/msgboard/internal/metrics"
	"github.com/msgboard/msgboard/internal/middleware"
)

// routerDeps collects what setupRouter mounts.
type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	metrics  http.Handler

	health   *handler.HealthHandler
	users    *handler.UserHandler
	messages *handler.MessageHandler
	static   *handler.StaticHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Metrics(d.recorder))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.cfg.IsDevelopment()}))
	if origins := d.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	r.Get("/health", d.health.Health)
	r.Get("/readyz", d.health.Readyz)
	if d.metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.metrics)
	}

	r.Get("/", d.static.Index)
	r.Method(http.MethodGet, "/static/*", d.static.Files("/static/"))

	r.Route("/users", func(r chi.Router) {
		r.Get("/", d.users.List)
		r.Post("/", d.users.Create)
		r.Get("/{id}", d.users.Get)
		r.Delete("/{id}", d.users.Delete)
	})

	r.Route("/messages", func(r chi.Router) {
		r.Get("/", d.messages.List)
		r.Post("/", d.messages.Create)
		r.Get("/{id}", d.messages.Get)
		r.Delete("/{id}", d.messages.Delete)
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
