// Package http wires the report service into a chi router.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"staypulse/internal/config"
	"staypulse/internal/services"
)

// NewRouter builds the API router with middleware and report routes.
func NewRouter(service *services.ReportService, cfg config.ServerConfig, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		handler := NewReportsHandler(service, logger)
		handler.RegisterRoutes(r)
	})

	return r
}

// healthHandler reports process liveness.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
