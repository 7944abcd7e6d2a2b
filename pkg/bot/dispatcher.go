package bot

import (
	"context"
	"fmt"

	"github.com/flemzord/tgbot/pkg/telegram"
)

// UnrecognizedMessageError is returned when a message carries none of the
// content kinds the Dispatcher knows how to route.
type UnrecognizedMessageError struct {
	MessageID int64
	ChatID    int64
}

func (e *UnrecognizedMessageError) Error() string {
	return fmt.Sprintf("bot: unrecognized message %d in chat %d", e.MessageID, e.ChatID)
}

// Dispatcher routes messages and callback queries to a Handler.
// It holds no mutable state and is safe for concurrent use as long as the
// Handler is.
type Dispatcher struct {
	handler Handler
}

// NewDispatcher creates a Dispatcher for h. A nil h dispatches to NopHandler.
func NewDispatcher(h Handler) *Dispatcher {
	if h == nil {
		h = NopHandler{}
	}
	return &Dispatcher{handler: h}
}

// Handler returns the handler the dispatcher routes to.
func (d *Dispatcher) Handler() Handler {
	return d.handler
}

// DispatchMessage invokes the hook matching msg's content kind and returns
// its error. Voice messages are accepted without invoking any hook.
func (d *Dispatcher) DispatchMessage(ctx context.Context, msg *telegram.Message) error {
	h := d.handler
	switch msg.Kind() {
	case telegram.ContentText:
		return h.OnText(ctx, msg)
	case telegram.ContentAudio:
		return h.OnAudio(ctx, msg)
	case telegram.ContentDocument:
		return h.OnDocument(ctx, msg)
	case telegram.ContentPhoto:
		return h.OnPhoto(ctx, msg)
	case telegram.ContentSticker:
		return h.OnSticker(ctx, msg)
	case telegram.ContentVideo:
		return h.OnVideo(ctx, msg)
	case telegram.ContentContact:
		return h.OnContact(ctx, msg)
	case telegram.ContentLocation:
		return h.OnLocation(ctx, msg)
	case telegram.ContentNewChatParticipant:
		return h.OnNewChatParticipant(ctx, msg)
	case telegram.ContentLeftChatParticipant:
		return h.OnLeftChatParticipant(ctx, msg)
	case telegram.ContentNewChatTitle:
		return h.OnNewChatTitle(ctx, msg)
	case telegram.ContentNewChatPhoto:
		return h.OnNewChatPhoto(ctx, msg)
	case telegram.ContentDeleteChatPhoto:
		return h.OnDeleteChatPhoto(ctx, msg)
	case telegram.ContentGroupChatCreated:
		return h.OnGroupChatCreated(ctx, msg)
	case telegram.ContentVoice:
		// No voice hook exists; the message is dropped.
		return nil
	default:
		return &UnrecognizedMessageError{MessageID: msg.MessageID, ChatID: msg.Chat.ID}
	}
}

// DispatchCallback invokes OnCallback.
func (d *Dispatcher) DispatchCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	return d.handler.OnCallback(ctx, cb)
}

// DispatchUpdate dispatches the update's message, or else its callback
// query. Updates carrying neither are ignored.
func (d *Dispatcher) DispatchUpdate(ctx context.Context, u *telegram.Update) error {
	switch {
	case u.Message != nil:
		return d.DispatchMessage(ctx, u.Message)
	case u.CallbackQuery != nil:
		return d.DispatchCallback(ctx, u.CallbackQuery)
	default:
		return nil
	}
}
