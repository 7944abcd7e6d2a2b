package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware(g.logger))
	r.Use(middleware.Recoverer)

	// Public.
	r.Get("/health", g.handleHealth())

	// The webhook authenticates with its own secret token header.
	if g.opts.Webhook != nil {
		r.Handle(g.config.WebhookPath, g.opts.Webhook)
	}

	r.Group(func(r chi.Router) {
		if g.config.Auth.IsConfigured() {
			r.Use(authMiddleware(g.config.Auth, g.logger, g.opts.AuthLimiter))
		}
		r.Get("/status", g.handleStatus())
		if g.opts.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", g.opts.Metrics.Handler())
		}
	})

	return r
}
