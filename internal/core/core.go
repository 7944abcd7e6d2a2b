// Package core provides the component lifecycle shared by the bot's
// long-running parts.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const shutdownTimeout = 30 * time.Second

// App manages the lifecycle of a set of named components. Each component
// may implement any of Starter, Stopper and Runner.
type App struct {
	components []component
	logger     *slog.Logger
}

type component struct {
	name    string
	value   any
	started bool
}

// NewApp creates an empty App.
func NewApp(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{logger: logger.With("component", "core")}
}

// Add registers a component. Components start in the order they are added.
func (a *App) Add(name string, c any) {
	a.components = append(a.components, component{name: name, value: c})
}

// Start starts all components that implement Starter, in order.
// If any Start() fails, already-started components are stopped in reverse order.
func (a *App) Start() error {
	for i := range a.components {
		c := &a.components[i]
		s, ok := c.value.(Starter)
		if !ok {
			c.started = true
			continue
		}
		a.logger.Info("starting component", "name", c.name)
		if err := s.Start(); err != nil {
			a.logger.Error("component start failed", "name", c.name, "error", err)
			a.stopComponents(i - 1)
			return fmt.Errorf("starting %s: %w", c.name, err)
		}
		c.started = true
	}
	a.logger.Info("all components started")
	return nil
}

// Stop stops all started components in reverse order with a timeout.
func (a *App) Stop() {
	a.stopComponents(len(a.components) - 1)
}

func (a *App) stopComponents(fromIndex int) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := fromIndex; i >= 0; i-- {
		c := &a.components[i]
		if !c.started {
			continue
		}
		if s, ok := c.value.(Stopper); ok {
			a.logger.Info("stopping component", "name", c.name)
			if err := s.Stop(ctx); err != nil {
				a.logger.Error("component stop error", "name", c.name, "error", err)
			}
		}
		c.started = false
	}
}

// Run starts all components, runs every Runner, and blocks until ctx is
// cancelled, a shutdown signal is received, or a Runner fails. Components
// are then stopped in reverse order. The first Runner error is returned.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		runErr  error
	)
	for _, c := range a.components {
		r, ok := c.value.(Runner)
		if !ok {
			continue
		}
		wg.Go(func() {
			err := r.Run(runCtx)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("component failed", "name", c.name, "error", err)
				errOnce.Do(func() { runErr = fmt.Errorf("%s: %w", c.name, err) })
			}
			cancel()
		})
	}

	<-runCtx.Done()
	if ctx.Err() != nil {
		a.logger.Info("shutdown requested")
	}
	cancel()
	wg.Wait()

	a.Stop()
	a.logger.Info("shutdown complete")
	return runErr
}
