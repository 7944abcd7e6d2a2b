// Package gateway hosts the bot's HTTP surface: the webhook endpoint, a
// health check, an authenticated status page and Prometheus metrics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/flemzord/tgbot/internal/security"
)

// Snapshot describes the running bot for /health and /status.
type Snapshot struct {
	Mode string `json:"mode"`
	Bot  string `json:"bot,omitempty"`
}

// SnapshotFunc reports the current bot state.
type SnapshotFunc func() Snapshot

// Options are the collaborators a Gateway serves.
type Options struct {
	Logger *slog.Logger

	// Metrics backs /metrics and /status. Nil disables /metrics.
	Metrics *Metrics

	// Webhook is mounted at Config.WebhookPath when non-nil.
	Webhook http.Handler

	Snapshot SnapshotFunc

	// AuthLimiter throttles authentication attempts when set.
	AuthLimiter *security.RateLimiter
}

// Gateway is the HTTP server. Start and Stop satisfy core.Starter and
// core.Stopper.
type Gateway struct {
	config    Config
	logger    *slog.Logger
	opts      Options
	handler   http.Handler
	startedAt time.Time

	mu     sync.Mutex
	server *http.Server
	addr   net.Addr
}

// New builds a Gateway. The router is assembled immediately so Handler can
// be exercised without listening.
func New(cfg Config, opts Options) *Gateway {
	cfg.defaults()
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Snapshot == nil {
		opts.Snapshot = func() Snapshot { return Snapshot{Mode: "none"} }
	}
	g := &Gateway{
		config:    cfg,
		logger:    opts.Logger.With("component", "gateway"),
		opts:      opts,
		startedAt: time.Now(),
	}
	g.handler = g.buildRouter()
	return g
}

// Handler returns the gateway's router.
func (g *Gateway) Handler() http.Handler { return g.handler }

// Addr returns the bound listener address, or nil before Start.
func (g *Gateway) Addr() net.Addr {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addr
}

// Start binds the listener and serves in the background.
func (g *Gateway) Start() error {
	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen on %s: %w", g.config.Bind, err)
	}

	srv := &http.Server{
		Handler:      g.handler,
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	g.mu.Lock()
	g.server = srv
	g.addr = ln.Addr()
	g.mu.Unlock()

	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	srv := g.server
	g.server = nil
	g.mu.Unlock()
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return srv.Shutdown(shutdownCtx)
}
