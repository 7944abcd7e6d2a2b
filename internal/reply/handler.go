// Package reply is the bot's default behaviour: it echoes text, answers
// commands and callbacks, mirrors shared locations and greets new members,
// subject to an optional allow list and a reply rate limit.
package reply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/flemzord/tgbot/internal/security"
	"github.com/flemzord/tgbot/pkg/bot"
	"github.com/flemzord/tgbot/pkg/telegram"
)

// Sender is the subset of telegram.Client the handler replies through.
type Sender interface {
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error)
	SendLocation(ctx context.Context, req telegram.SendLocationRequest) (*telegram.Message, error)
	SendChatAction(ctx context.Context, chatID int64, action string) error
	AnswerCallbackQuery(ctx context.Context, req telegram.AnswerCallbackQueryRequest) (bool, error)
}

// Config configures a Handler.
type Config struct {
	Client Sender

	// BotName is shown in the /start greeting.
	BotName string

	// Allow restricts who gets answers. Nil answers everyone.
	Allow *AllowList

	// Limiter drops replies over the per-chat or global budget. Nil
	// disables limiting.
	Limiter *security.RateLimiter

	// OnThrottle is called for every dropped reply.
	OnThrottle func()

	Logger *slog.Logger
}

// Handler implements bot.Handler.
type Handler struct {
	bot.NopHandler

	client     Sender
	botName    atomic.Pointer[string]
	allow      atomic.Pointer[AllowList]
	limiter    *security.RateLimiter
	onThrottle func()
	logger     *slog.Logger
}

var _ bot.Handler = (*Handler)(nil)

// errSkip marks a reply that was intentionally not sent.
var errSkip = errors.New("reply skipped")

// New creates a Handler.
func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.OnThrottle == nil {
		cfg.OnThrottle = func() {}
	}
	h := &Handler{
		client:     cfg.Client,
		limiter:    cfg.Limiter,
		onThrottle: cfg.OnThrottle,
		logger:     cfg.Logger.With("component", "reply"),
	}
	h.SetBotName(cfg.BotName)
	h.SetAllowList(cfg.Allow)
	return h
}

// SetAllowList replaces the allow list. Nil answers everyone.
func (h *Handler) SetAllowList(a *AllowList) {
	h.allow.Store(a)
}

// SetBotName changes the name shown in the /start greeting.
func (h *Handler) SetBotName(name string) {
	h.botName.Store(&name)
}

// OnText answers /start and /help and echoes anything else.
func (h *Handler) OnText(ctx context.Context, msg *telegram.Message) error {
	if err := h.admit(msg); err != nil {
		return nil
	}

	cmd, _, _ := strings.Cut(strings.TrimSpace(msg.Text), " ")
	// Commands in groups may carry the bot username: /start@my_bot.
	cmd, _, _ = strings.Cut(cmd, "@")

	switch cmd {
	case "/start":
		name := *h.botName.Load()
		if name == "" {
			name = "this bot"
		}
		return h.send(ctx, telegram.SendMessageRequest{
			ChatID:    msg.Chat.ID,
			Text:      "Hello from " + bold(name) + EscapeMarkdownV2(". Send me anything and I will echo it back."),
			ParseMode: "MarkdownV2",
		})
	case "/help":
		return h.send(ctx, telegram.SendMessageRequest{
			ChatID: msg.Chat.ID,
			Text:   "/start shows a greeting\n/help shows this message\nAny other text is echoed back, locations are mirrored.",
		})
	}

	if err := h.client.SendChatAction(ctx, msg.Chat.ID, "typing"); err != nil {
		h.logger.Debug("chat action failed", "chat_id", msg.Chat.ID, "error", err)
	}
	for i, chunk := range SplitText(msg.Text, MaxMessageLength) {
		req := telegram.SendMessageRequest{ChatID: msg.Chat.ID, Text: chunk}
		if i == 0 {
			req.ReplyToMessageID = msg.MessageID
		}
		if err := h.send(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// OnLocation sends the shared location back.
func (h *Handler) OnLocation(ctx context.Context, msg *telegram.Message) error {
	if err := h.admit(msg); err != nil {
		return nil
	}
	_, err := h.client.SendLocation(ctx, telegram.SendLocationRequest{
		ChatID:           msg.Chat.ID,
		Latitude:         msg.Location.Latitude,
		Longitude:        msg.Location.Longitude,
		ReplyToMessageID: msg.MessageID,
	})
	if err != nil {
		return fmt.Errorf("reply: send location: %w", err)
	}
	return nil
}

// OnNewChatParticipant greets the member who joined.
func (h *Handler) OnNewChatParticipant(ctx context.Context, msg *telegram.Message) error {
	if err := h.admit(msg); err != nil {
		return nil
	}
	return h.send(ctx, telegram.SendMessageRequest{
		ChatID: msg.Chat.ID,
		Text:   "Welcome, " + msg.NewChatParticipant.FirstName + "!",
	})
}

// OnCallback acknowledges a button press, echoing its data.
func (h *Handler) OnCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	var chatID int64
	if cb.Message != nil {
		chatID = cb.Message.Chat.ID
	}
	if allow := h.allow.Load(); allow != nil && !allow.IsAllowed(cb.From.ID, chatID) {
		return nil
	}

	text := "Received"
	if cb.Data != "" {
		text = "Received: " + cb.Data
	}
	if _, err := h.client.AnswerCallbackQuery(ctx, telegram.AnswerCallbackQueryRequest{
		CallbackQueryID: cb.ID,
		Text:            text,
	}); err != nil {
		return fmt.Errorf("reply: answer callback %s: %w", cb.ID, err)
	}
	return nil
}

// admit applies the allow list and the rate limit. A non-nil error means
// the message is dropped without a reply.
func (h *Handler) admit(msg *telegram.Message) error {
	if allow := h.allow.Load(); allow != nil && !allow.allowsMessage(msg) {
		h.logger.Debug("message from unlisted sender ignored", "chat_id", msg.Chat.ID)
		return errSkip
	}
	if h.limiter != nil {
		if err := h.limiter.Allow(chatKey(msg.Chat.ID)); err != nil {
			h.onThrottle()
			h.logger.Warn("reply throttled", "chat_id", msg.Chat.ID)
			return errSkip
		}
	}
	return nil
}

func (h *Handler) send(ctx context.Context, req telegram.SendMessageRequest) error {
	if _, err := h.client.SendMessage(ctx, req); err != nil {
		return fmt.Errorf("reply: send message to %d: %w", req.ChatID, err)
	}
	return nil
}
