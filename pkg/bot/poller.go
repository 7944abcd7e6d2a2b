package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/flemzord/tgbot/pkg/telegram"
)

// ErrPollerRunning is returned by Run when the poller is already running.
var ErrPollerRunning = errors.New("bot: poller already running")

// UpdateSource is the part of the Bot API the poller consumes.
// *telegram.Client implements it.
type UpdateSource interface {
	GetUpdates(ctx context.Context, req telegram.GetUpdatesRequest) ([]telegram.Update, error)
	ClearWebhook(ctx context.Context) error
}

// ErrorFunc decides what happens after a failed dispatch. Returning nil
// keeps the delivery going; returning an error aborts it.
type ErrorFunc func(ctx context.Context, u *telegram.Update, err error) error

// State is the run state of a Poller.
type State int32

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// PollerConfig configures a Poller.
type PollerConfig struct {
	// Timeout is the long-poll wait in seconds for the first fetch of a tick.
	Timeout int

	// Limit is the page size; defaults to telegram.DefaultPageLimit.
	Limit int

	Logger   *slog.Logger
	Offsets  OffsetStore
	Observer Observer

	// OnError handles dispatch errors. The default logs and continues.
	OnError ErrorFunc
}

func (c *PollerConfig) defaults() {
	if c.Limit <= 0 {
		c.Limit = telegram.DefaultPageLimit
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Offsets == nil {
		c.Offsets = &MemoryOffsetStore{}
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
}

// Poller drives the long-polling loop: it fetches pages of updates,
// advances the offset cursor and feeds each message to the Dispatcher,
// one update at a time in arrival order.
type Poller struct {
	source     UpdateSource
	dispatcher *Dispatcher
	config     PollerConfig
	logger     *slog.Logger

	offset   atomic.Int64
	state    atomic.Int32
	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a Poller reading from source.
func NewPoller(source UpdateSource, d *Dispatcher, cfg PollerConfig) *Poller {
	cfg.defaults()
	p := &Poller{
		source:     source,
		dispatcher: d,
		config:     cfg,
		logger:     cfg.Logger.With("component", "poller"),
		stopCh:     make(chan struct{}),
	}
	if p.config.OnError == nil {
		p.config.OnError = p.logDispatchError
	}
	return p
}

// Run clears any webhook registration, restores the stored offset and
// polls until ctx is cancelled or Stop is called, in which case it returns
// nil. A transport failure other than a client-side timeout ends the loop
// and is returned, as is any error returned by OnError.
func (p *Poller) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrPollerRunning
	}
	defer p.running.Store(false)

	p.state.Store(int32(StateRunning))
	defer p.state.Store(int32(StateStopped))

	if err := p.source.ClearWebhook(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("bot: clear webhook before polling: %w", err)
	}

	offset, err := p.config.Offsets.LoadOffset(ctx)
	if err != nil {
		return fmt.Errorf("bot: load offset: %w", err)
	}
	p.offset.Store(offset)

	p.logger.Info("polling started", "offset", offset, "timeout", p.config.Timeout)
	defer func() { p.logger.Info("polling stopped", "offset", p.offset.Load()) }()

	for {
		select {
		case <-p.stopCh:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		if err := p.tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Stop makes Run return after the current tick. It is safe to call Stop
// multiple times; a stopped Poller cannot be restarted.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// State reports whether the loop is running.
func (p *Poller) State() State {
	return State(p.state.Load())
}

// Offset returns the next update id the poller will ask for.
func (p *Poller) Offset() int64 {
	return p.offset.Load()
}

// tick fetches every available page and dispatches the batch.
func (p *Poller) tick(ctx context.Context) error {
	start := p.offset.Load()
	batch, err := p.fetch(ctx)
	if err != nil {
		return err
	}

	if next := p.offset.Load(); next != start {
		if err := p.config.Offsets.SaveOffset(ctx, next); err != nil {
			return fmt.Errorf("bot: save offset: %w", err)
		}
	}

	for i := range batch {
		u := &batch[i]
		p.config.Observer.UpdateReceived(SourcePolling)
		if u.Message == nil {
			p.logger.Debug("skipping update without message", "update_id", u.UpdateID)
			continue
		}
		if err := p.dispatcher.DispatchMessage(ctx, u.Message); err != nil {
			p.config.Observer.DispatchFailed(SourcePolling)
			if herr := p.config.OnError(ctx, u, err); herr != nil {
				return herr
			}
		}
	}
	return nil
}

// fetch pages through getUpdates from the current offset until a page comes
// back empty. Only the first request long-polls. A client-side timeout ends
// paging without error and keeps what was already received.
func (p *Poller) fetch(ctx context.Context) ([]telegram.Update, error) {
	var batch []telegram.Update
	timeout := p.config.Timeout
	for {
		updates, err := p.source.GetUpdates(ctx, telegram.GetUpdatesRequest{
			Offset:  p.offset.Load(),
			Limit:   p.config.Limit,
			Timeout: timeout,
		})
		if err != nil {
			if telegram.IsTimeout(err) {
				p.logger.Debug("getUpdates timed out", "offset", p.offset.Load())
				p.config.Observer.PollTimeout()
				return batch, nil
			}
			return nil, fmt.Errorf("bot: poll updates: %w", err)
		}
		if len(updates) == 0 {
			return batch, nil
		}
		batch = append(batch, updates...)
		p.offset.Store(updates[len(updates)-1].UpdateID + 1)
		timeout = 0
	}
}

func (p *Poller) logDispatchError(_ context.Context, u *telegram.Update, err error) error {
	p.logger.Error("dispatch failed", "update_id", u.UpdateID, "error", err)
	return nil
}
