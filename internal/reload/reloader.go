package reload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flemzord/tgbot/internal/config"
)

// Applier receives every configuration that loaded and validated.
type Applier interface {
	Apply(cfg *config.Config) error
}

// ApplyFunc adapts a function to Applier.
type ApplyFunc func(cfg *config.Config) error

// Apply calls f(cfg).
func (f ApplyFunc) Apply(cfg *config.Config) error { return f(cfg) }

// Config configures a Reloader.
type Config struct {
	// Path is the configuration file to re-read.
	Path string

	// Interval is the file polling period. Defaults to 5 seconds.
	Interval time.Duration

	// OnReload is called after every attempt with its outcome.
	OnReload func(err error)

	Logger *slog.Logger
}

// Reloader re-reads the configuration when the file changes or the
// process receives SIGHUP. A file that fails to load or validate is
// logged and ignored, so the running settings stay in place.
type Reloader struct {
	cfg      Config
	appliers []Applier
	logger   *slog.Logger
	watcher  *Watcher
}

// New creates a Reloader that hands each new configuration to appliers in
// order.
func New(cfg Config, appliers ...Applier) *Reloader {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.OnReload == nil {
		cfg.OnReload = func(error) {}
	}
	return &Reloader{
		cfg:      cfg,
		appliers: appliers,
		logger:   cfg.Logger.With("component", "reload"),
		watcher:  NewWatcher(WatcherConfig{Path: cfg.Path, Interval: cfg.Interval}),
	}
}

// Reload loads, validates and applies the configuration once. Every
// applier runs even if an earlier one fails; the errors are joined.
func (r *Reloader) Reload() error {
	cfg, err := config.Load(r.cfg.Path)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	var errs []error
	for _, a := range r.appliers {
		if err := a.Apply(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("reload: apply: %w", err)
	}
	return nil
}

// Run watches for changes and SIGHUP until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.watcher.Run(watchCtx)

	r.logger.Debug("watching configuration", "path", r.cfg.Path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.watcher.Changes():
			r.reload("file changed")
		case <-hup:
			r.reload("SIGHUP")
		}
	}
}

func (r *Reloader) reload(reason string) {
	err := r.Reload()
	if err != nil {
		r.logger.Error("configuration reload failed, keeping current settings", "reason", reason, "error", err)
	} else {
		r.logger.Info("configuration reloaded", "reason", reason)
	}
	r.cfg.OnReload(err)
}
