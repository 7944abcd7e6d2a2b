package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/flemzord/tgbot/internal/config"
	"github.com/flemzord/tgbot/internal/core"
	"github.com/flemzord/tgbot/internal/cron"
	"github.com/flemzord/tgbot/internal/gateway"
	"github.com/flemzord/tgbot/internal/reload"
	"github.com/flemzord/tgbot/internal/reply"
	"github.com/flemzord/tgbot/internal/security"
	"github.com/flemzord/tgbot/internal/tracing"
	"github.com/flemzord/tgbot/modules/offset/sqlite"
	"github.com/flemzord/tgbot/pkg/bot"
	"github.com/flemzord/tgbot/pkg/telegram"
)

const tracerName = "github.com/flemzord/tgbot/pkg/telegram"

// Runtime is the fully wired application.
type Runtime struct {
	App       *core.App
	Bot       *bot.Bot
	Gateway   *gateway.Gateway
	Metrics   *gateway.Metrics
	Scheduler *cron.Scheduler
	Limiter   *security.RateLimiter
	delivery  *delivery
	cfg       *config.Config
}

// Build wires every component described by cfg. Nothing is started; call
// Runtime.App.Run.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	app := core.NewApp(logger)
	metrics := gateway.NewMetrics()

	tp, err := tracing.Setup(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		ServiceName: cfg.Tracing.ServiceName,
	}, logger)
	if err != nil {
		return nil, err
	}
	app.Add("tracing", tp)

	client, err := telegram.NewClient(cfg.Telegram.Token,
		telegram.WithBaseURL(cfg.Telegram.APIURL),
		telegram.WithHTTPClient(&http.Client{
			Timeout:   httpTimeout(cfg.Telegram.PollingTimeout),
			Transport: metrics.InstrumentTransport(http.DefaultTransport),
		}),
		telegram.WithTracer(tp.Tracer(tracerName)),
	)
	if err != nil {
		return nil, err
	}

	offsets, err := openOffsetStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := offsets.(interface{ Close() error }); ok {
		app.Add("offsets", stopFunc(func(context.Context) error { return c.Close() }))
	}

	limiter := security.NewRateLimiter(security.RateLimitConfig{
		PerChatPerMin: cfg.Limits.PerChatPerMin,
		GlobalPerSec:  cfg.Limits.GlobalPerSec,
	})

	d := &delivery{cfg: cfg.Telegram, logger: logger.With("component", "delivery")}
	handler := reply.New(reply.Config{
		Client:     client,
		Allow:      allowList(cfg.Access),
		Limiter:    limiter,
		OnThrottle: metrics.ReplyThrottled,
		Logger:     logger,
	})
	d.handler = handler

	b, err := bot.New(cfg.Telegram.Token, handler,
		bot.WithClient(client),
		bot.WithLogger(logger),
		bot.WithObserver(metrics),
		bot.WithOffsetStore(offsets),
		bot.WithWebhookSecret(cfg.Telegram.WebhookSecret),
	)
	if err != nil {
		return nil, err
	}
	d.bot = b

	authLimiter := security.NewRateLimiter(security.RateLimitConfig{PerChatPerMin: 60, GlobalPerSec: 10})
	gw := gateway.New(gateway.Config{
		Bind:        cfg.Gateway.Bind,
		WebhookPath: cfg.Gateway.WebhookPath,
		Auth: gateway.AuthConfig{
			BearerToken: cfg.Gateway.Auth.BearerToken,
			BasicUser:   cfg.Gateway.Auth.BasicUser,
			BasicPass:   cfg.Gateway.Auth.BasicPass,
		},
		ReadTimeout:     cfg.Gateway.ReadTimeout,
		WriteTimeout:    cfg.Gateway.WriteTimeout,
		ShutdownTimeout: cfg.Gateway.ShutdownTimeout,
	}, gateway.Options{
		Logger:      logger,
		Metrics:     metrics,
		Webhook:     webhookRoute(cfg, b),
		Snapshot:    d.snapshot,
		AuthLimiter: authLimiter,
	})
	app.Add("gateway", gw)

	sched, err := buildScheduler(cfg, client, limiter, authLimiter, metrics, logger)
	if err != nil {
		return nil, err
	}
	app.Add("cron", sched)

	// Delivery goes last so it stops first.
	app.Add("delivery", d)

	return &Runtime{
		App:       app,
		Bot:       b,
		Gateway:   gw,
		Metrics:   metrics,
		Scheduler: sched,
		Limiter:   limiter,
		delivery:  d,
		cfg:       cfg,
	}, nil
}

// Reloader re-reads path while the bot runs. The allow list and, when
// level is non-nil, the log level follow the file. Other changes are
// logged and need a restart.
func (rt *Runtime) Reloader(path string, level *slog.LevelVar, logger *slog.Logger) *reload.Reloader {
	logger = logger.With("component", "reload")
	return reload.New(reload.Config{
		Path:     path,
		OnReload: rt.Metrics.ConfigReload,
		Logger:   logger,
	},
		reload.ApplyFunc(func(cfg *config.Config) error {
			rt.delivery.handler.SetAllowList(allowList(cfg.Access))
			return nil
		}),
		reload.ApplyFunc(func(cfg *config.Config) error {
			if level != nil {
				level.Set(cfg.Log.SlogLevel())
			}
			return nil
		}),
		reload.ApplyFunc(func(cfg *config.Config) error {
			if cfg.Telegram != rt.cfg.Telegram || cfg.Gateway != rt.cfg.Gateway || cfg.Store != rt.cfg.Store {
				logger.Warn("settings changed that only apply after a restart")
			}
			return nil
		}),
	)
}

// httpTimeout keeps the client timeout above the long-poll deadline.
func httpTimeout(pollSeconds int) time.Duration {
	return max(60*time.Second, time.Duration(pollSeconds+15)*time.Second)
}

func openOffsetStore(ctx context.Context, cfg *config.Config) (bot.OffsetStore, error) {
	if cfg.Store.Path == "" {
		return &bot.MemoryOffsetStore{}, nil
	}
	store, err := sqlite.Open(ctx, sqlite.Config{
		Path: cfg.Store.Path,
		Key:  botKey(cfg.Telegram.Token),
	})
	if err != nil {
		return nil, fmt.Errorf("app: open offset store: %w", err)
	}
	return store, nil
}

// botKey is the numeric bot id prefix of a token, so one database can hold
// cursors for several bots without storing the secret.
func botKey(token string) string {
	id, _, ok := strings.Cut(token, ":")
	if !ok || id == "" {
		return ""
	}
	return id
}

func allowList(ac *config.AccessConfig) *reply.AllowList {
	if ac == nil {
		return nil
	}
	return reply.NewAllowList(ac.AllowUsers, ac.AllowChats)
}

// webhookRoute mounts the webhook handler only in webhook mode, so a
// polling bot never accepts pushed updates.
func webhookRoute(cfg *config.Config, b *bot.Bot) http.Handler {
	if cfg.Telegram.Mode != config.ModeWebhook {
		return nil
	}
	return b.WebhookHandler()
}

func buildScheduler(cfg *config.Config, client *telegram.Client, limiter, authLimiter *security.RateLimiter, metrics *gateway.Metrics, logger *slog.Logger) (*cron.Scheduler, error) {
	sched := cron.NewScheduler(logger)
	sched.OnRun(metrics.JobRun)

	if err := sched.RegisterJob(&cron.LimiterPruneJob{Limiter: limiter, Logger: logger, Label: "replies"}); err != nil {
		return nil, err
	}
	if err := sched.RegisterJob(&cron.LimiterPruneJob{Limiter: authLimiter, Logger: logger, Label: "auth"}); err != nil {
		return nil, err
	}
	for _, e := range cfg.Schedule {
		if err := sched.RegisterJob(&cron.AnnouncementJob{
			Sender:       client,
			JobName:      e.Name,
			ScheduleExpr: e.Cron,
			ChatID:       e.ChatID,
			Text:         e.Text,
			Logger:       logger,
			Limiter:      limiter,
		}); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

// delivery owns the update delivery mode. Start verifies the token with
// getMe; Run polls or registers the webhook until ctx ends; Stop removes
// a webhook registration left behind by Run.
type delivery struct {
	cfg     config.TelegramConfig
	bot     *bot.Bot
	handler *reply.Handler
	logger  *slog.Logger
	botName atomic.Value // string
}

func (d *delivery) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	me, err := d.bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("app: verify bot token: %w", err)
	}
	d.botName.Store(me.Username)
	d.handler.SetBotName(me.Username)
	d.logger.Info("authorized", "bot", me.Username, "id", me.ID)
	return nil
}

func (d *delivery) Run(ctx context.Context) error {
	if d.cfg.Mode == config.ModeWebhook {
		if err := d.bot.Listen(ctx, d.cfg.WebhookURL); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	}
	return d.bot.Poll(ctx, d.cfg.PollingTimeout)
}

func (d *delivery) Stop(ctx context.Context) error {
	if d.bot.Mode() != bot.ModeWebhook {
		return nil
	}
	if err := d.bot.Close(ctx); err != nil {
		return err
	}
	d.logger.Info("webhook cleared")
	return nil
}

func (d *delivery) snapshot() gateway.Snapshot {
	name, _ := d.botName.Load().(string)
	return gateway.Snapshot{Mode: d.bot.Mode().String(), Bot: name}
}

// stopFunc adapts a cleanup function to core.Stopper.
type stopFunc func(ctx context.Context) error

func (f stopFunc) Stop(ctx context.Context) error { return f(ctx) }
