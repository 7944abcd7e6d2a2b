package core

import "context"

// Starter is implemented by components that need to start background work
// (goroutines, listeners, connections). Called in registration order.
type Starter interface {
	Start() error
}

// Stopper is implemented by components that need to clean up resources.
// Called during shutdown in reverse order of Start().
type Stopper interface {
	Stop(ctx context.Context) error
}

// Runner is implemented by components that work in the foreground until
// their context is cancelled. A Runner returning an error ends the App.
type Runner interface {
	Run(ctx context.Context) error
}
