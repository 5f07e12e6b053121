// Package router assembles the chi router that fronts the document renderer.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conduit-lang/pagemeta/internal/web/middleware"
	"github.com/conduit-lang/pagemeta/internal/web/ratelimit"
)

// Config holds router configuration
type Config struct {
	// Documents renders every GET path not claimed by another route
	Documents http.Handler
	// Logger is attached to every request context
	Logger *zap.Logger
	// RequestTimeout bounds each request's context
	RequestTimeout time.Duration
	// ShowDetails includes request details in JSON error bodies
	ShowDetails bool
	// RateLimiter throttles document requests per client (optional)
	RateLimiter ratelimit.Limiter
}

// New builds the HTTP handler
func New(config Config) http.Handler {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(middleware.DefaultRequestIDConfig(config.Logger)),
		middleware.Logging(middleware.LoggingConfig{SkipPaths: []string{"/healthz"}}),
		middleware.Recovery(middleware.RecoveryConfig{EnableStackTrace: true}),
	)
	if config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(config.RequestTimeout))
	}

	errs := NewErrorHandler(config.ShowDetails)
	r.NotFound(errs.NotFoundHandler())
	r.MethodNotAllowed(errs.MethodNotAllowedHandler())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if config.Documents != nil {
		r.Group(func(r chi.Router) {
			if config.RateLimiter != nil {
				r.Use(ratelimit.Middleware(config.RateLimiter, ratelimit.ClientIP))
			}
			r.Method(http.MethodGet, "/*", config.Documents)
		})
	}

	return r
}
