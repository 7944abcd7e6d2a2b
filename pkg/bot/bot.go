package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/flemzord/tgbot/pkg/telegram"
)

// Mode is the delivery mode a Bot is currently in.
type Mode int

const (
	ModeNone Mode = iota
	ModePolling
	ModeWebhook
)

func (m Mode) String() string {
	switch m {
	case ModePolling:
		return "polling"
	case ModeWebhook:
		return "webhook"
	default:
		return "none"
	}
}

// Bot owns a Client and one Dispatcher shared by both delivery modes.
// At most one mode is active at a time: Poll clears any webhook before
// polling and Listen stops an active poll before registering a webhook.
type Bot struct {
	client     *telegram.Client
	dispatcher *Dispatcher
	webhook    *WebhookHandler
	logger     *slog.Logger
	observer   Observer
	offsets    OffsetStore
	secret     string

	// switching serializes mode changes. Listen and Close hold it for the
	// whole switch; Poll holds it only while it claims the polling slot.
	switching sync.Mutex

	mu         sync.Mutex
	mode       Mode
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// BotOption customizes a Bot.
type BotOption func(*botOptions)

type botOptions struct {
	client     *telegram.Client
	clientOpts []telegram.Option
	logger     *slog.Logger
	observer   Observer
	offsets    OffsetStore
	secret     string
}

// WithClientOptions passes options to the underlying telegram.Client.
func WithClientOptions(opts ...telegram.Option) BotOption {
	return func(o *botOptions) { o.clientOpts = append(o.clientOpts, opts...) }
}

// WithClient uses an existing client instead of building one from the
// token. Client options are ignored when it is set.
func WithClient(c *telegram.Client) BotOption {
	return func(o *botOptions) { o.client = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) BotOption {
	return func(o *botOptions) { o.logger = l }
}

// WithObserver sets the delivery observer.
func WithObserver(obs Observer) BotOption {
	return func(o *botOptions) { o.observer = obs }
}

// WithOffsetStore sets where the polling offset is checkpointed.
func WithOffsetStore(s OffsetStore) BotOption {
	return func(o *botOptions) { o.offsets = s }
}

// WithWebhookSecret sets the secret token registered by Listen and checked
// by the webhook handler.
func WithWebhookSecret(secret string) BotOption {
	return func(o *botOptions) { o.secret = secret }
}

// New creates a Bot for token dispatching to h. It fails with
// telegram.ErrMissingToken when token is empty and no client is supplied.
func New(token string, h Handler, opts ...BotOption) (*Bot, error) {
	o := botOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	if o.offsets == nil {
		o.offsets = &MemoryOffsetStore{}
	}

	client := o.client
	if client == nil {
		var err error
		if client, err = telegram.NewClient(token, o.clientOpts...); err != nil {
			return nil, err
		}
	}

	d := NewDispatcher(h)
	return &Bot{
		client:     client,
		dispatcher: d,
		webhook: NewWebhookHandler(d, WebhookConfig{
			Secret:   o.secret,
			Logger:   o.logger,
			Observer: o.observer,
		}),
		logger:   o.logger.With("component", "bot"),
		observer: o.observer,
		offsets:  o.offsets,
		secret:   o.secret,
	}, nil
}

// Client returns the underlying API client.
func (b *Bot) Client() *telegram.Client { return b.client }

// Dispatcher returns the dispatcher shared by polling and webhook delivery.
func (b *Bot) Dispatcher() *Dispatcher { return b.dispatcher }

// WebhookHandler returns the HTTP endpoint for webhook delivery.
func (b *Bot) WebhookHandler() *WebhookHandler { return b.webhook }

// Mode reports the current delivery mode.
func (b *Bot) Mode() Mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

// GetMe returns the bot's own user record.
func (b *Bot) GetMe(ctx context.Context) (*telegram.User, error) {
	return b.client.GetMe(ctx)
}

// Poll runs the polling loop with the given long-poll timeout (seconds)
// until ctx is cancelled, Listen or Close is called, or a fatal error
// occurs. Only one Poll may run at a time.
func (b *Bot) Poll(ctx context.Context, timeout int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b.switching.Lock()
	b.mu.Lock()
	if b.pollDone != nil {
		b.mu.Unlock()
		b.switching.Unlock()
		return ErrPollerRunning
	}
	done := make(chan struct{})
	b.mode = ModePolling
	b.pollCancel = cancel
	b.pollDone = done
	b.mu.Unlock()
	b.switching.Unlock()

	defer func() {
		b.mu.Lock()
		if b.mode == ModePolling {
			b.mode = ModeNone
		}
		b.pollCancel = nil
		b.pollDone = nil
		b.mu.Unlock()
		close(done)
	}()

	p := NewPoller(b.client, b.dispatcher, PollerConfig{
		Timeout:  timeout,
		Logger:   b.logger,
		Offsets:  b.offsets,
		Observer: b.observer,
	})
	return p.Run(ctx)
}

// Listen switches the bot to webhook mode: it stops an active poll and
// registers url with the API. A Poll started while Listen is in progress
// waits for it and then takes over.
func (b *Bot) Listen(ctx context.Context, url string) error {
	b.switching.Lock()
	defer b.switching.Unlock()

	b.stopPolling()
	if err := b.client.SetWebhookWith(ctx, telegram.SetWebhookRequest{
		URL:         url,
		SecretToken: b.secret,
	}); err != nil {
		return fmt.Errorf("bot: register webhook: %w", err)
	}
	b.mu.Lock()
	b.mode = ModeWebhook
	b.mu.Unlock()
	b.logger.Info("webhook registered", "url", url)
	return nil
}

// Close stops an active poll and clears any webhook registration, leaving
// the bot with no delivery mode. Calling Close repeatedly is harmless.
func (b *Bot) Close(ctx context.Context) error {
	b.switching.Lock()
	defer b.switching.Unlock()

	b.stopPolling()
	if err := b.client.ClearWebhook(ctx); err != nil {
		return fmt.Errorf("bot: clear webhook: %w", err)
	}
	b.mu.Lock()
	b.mode = ModeNone
	b.mu.Unlock()
	return nil
}

// stopPolling cancels a running Poll and waits for it to return. The
// caller holds b.switching so no new Poll can start meanwhile.
func (b *Bot) stopPolling() {
	b.mu.Lock()
	cancel, done := b.pollCancel, b.pollDone
	b.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
