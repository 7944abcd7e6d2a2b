package bot

import (
	"context"

	"github.com/flemzord/tgbot/pkg/telegram"
)

// Handler receives dispatched updates. Each message reaches exactly one
// On* hook selected by its content kind; callback queries reach OnCallback.
//
// Embed NopHandler to implement only the hooks you need.
type Handler interface {
	OnText(ctx context.Context, msg *telegram.Message) error
	OnAudio(ctx context.Context, msg *telegram.Message) error
	OnDocument(ctx context.Context, msg *telegram.Message) error
	OnPhoto(ctx context.Context, msg *telegram.Message) error
	OnSticker(ctx context.Context, msg *telegram.Message) error
	OnVideo(ctx context.Context, msg *telegram.Message) error
	OnContact(ctx context.Context, msg *telegram.Message) error
	OnLocation(ctx context.Context, msg *telegram.Message) error
	OnNewChatParticipant(ctx context.Context, msg *telegram.Message) error
	OnLeftChatParticipant(ctx context.Context, msg *telegram.Message) error
	OnNewChatTitle(ctx context.Context, msg *telegram.Message) error
	OnNewChatPhoto(ctx context.Context, msg *telegram.Message) error
	OnDeleteChatPhoto(ctx context.Context, msg *telegram.Message) error
	OnGroupChatCreated(ctx context.Context, msg *telegram.Message) error
	OnCallback(ctx context.Context, cb *telegram.CallbackQuery) error
}

// NopHandler implements every Handler hook as a no-op.
type NopHandler struct{}

var _ Handler = NopHandler{}

func (NopHandler) OnText(context.Context, *telegram.Message) error                { return nil }
func (NopHandler) OnAudio(context.Context, *telegram.Message) error               { return nil }
func (NopHandler) OnDocument(context.Context, *telegram.Message) error            { return nil }
func (NopHandler) OnPhoto(context.Context, *telegram.Message) error               { return nil }
func (NopHandler) OnSticker(context.Context, *telegram.Message) error             { return nil }
func (NopHandler) OnVideo(context.Context, *telegram.Message) error               { return nil }
func (NopHandler) OnContact(context.Context, *telegram.Message) error             { return nil }
func (NopHandler) OnLocation(context.Context, *telegram.Message) error            { return nil }
func (NopHandler) OnNewChatParticipant(context.Context, *telegram.Message) error  { return nil }
func (NopHandler) OnLeftChatParticipant(context.Context, *telegram.Message) error { return nil }
func (NopHandler) OnNewChatTitle(context.Context, *telegram.Message) error        { return nil }
func (NopHandler) OnNewChatPhoto(context.Context, *telegram.Message) error        { return nil }
func (NopHandler) OnDeleteChatPhoto(context.Context, *telegram.Message) error     { return nil }
func (NopHandler) OnGroupChatCreated(context.Context, *telegram.Message) error    { return nil }
func (NopHandler) OnCallback(context.Context, *telegram.CallbackQuery) error      { return nil }
