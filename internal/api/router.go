// Package api exposes the HTTP surface: bucket creation, image link
// resolution, a healthcheck and Prometheus metrics.
//
// Every /api response is HTTP 200 with a JSON envelope. Failures of any
// kind are reported in the envelope's "error" field.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/bucketlink/internal/logger"
	"github.com/koustreak/bucketlink/internal/metrics"
)

// RouterConfig carries what NewRouter needs besides the handler.
type RouterConfig struct {
	AllowedOrigins []string
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
}

// NewRouter mounts h under /api and metrics under /metrics.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(instrument(log.Component("http"), cfg.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(cfg.AllowedOrigins).Handler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/buckets/create", h.CreateBucket)
		r.Post("/files/image/link", h.ImageLink)
		r.Get("/healthcheck/check", h.Healthcheck)
	})

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	return r
}
