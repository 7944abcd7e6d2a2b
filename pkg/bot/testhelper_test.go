package bot

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/flemzord/tgbot/pkg/telegram"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingHandler records the name of every hook invoked.
type recordingHandler struct {
	NopHandler

	mu    sync.Mutex
	calls []string
	ids   []int64
	err   error
}

func (h *recordingHandler) record(name string, id int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, name)
	h.ids = append(h.ids, id)
	return h.err
}

func (h *recordingHandler) snapshot() ([]string, []int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...), append([]int64(nil), h.ids...)
}

func (h *recordingHandler) OnText(_ context.Context, m *telegram.Message) error {
	return h.record("text", m.MessageID)
}

func (h *recordingHandler) OnAudio(_ context.Context, m *telegram.Message) error {
	return h.record("audio", m.MessageID)
}

func (h *recordingHandler) OnDocument(_ context.Context, m *telegram.Message) error {
	return h.record("document", m.MessageID)
}

func (h *recordingHandler) OnPhoto(_ context.Context, m *telegram.Message) error {
	return h.record("photo", m.MessageID)
}

func (h *recordingHandler) OnSticker(_ context.Context, m *telegram.Message) error {
	return h.record("sticker", m.MessageID)
}

func (h *recordingHandler) OnVideo(_ context.Context, m *telegram.Message) error {
	return h.record("video", m.MessageID)
}

func (h *recordingHandler) OnContact(_ context.Context, m *telegram.Message) error {
	return h.record("contact", m.MessageID)
}

func (h *recordingHandler) OnLocation(_ context.Context, m *telegram.Message) error {
	return h.record("location", m.MessageID)
}

func (h *recordingHandler) OnNewChatParticipant(_ context.Context, m *telegram.Message) error {
	return h.record("new_chat_participant", m.MessageID)
}

func (h *recordingHandler) OnLeftChatParticipant(_ context.Context, m *telegram.Message) error {
	return h.record("left_chat_participant", m.MessageID)
}

func (h *recordingHandler) OnNewChatTitle(_ context.Context, m *telegram.Message) error {
	return h.record("new_chat_title", m.MessageID)
}

func (h *recordingHandler) OnNewChatPhoto(_ context.Context, m *telegram.Message) error {
	return h.record("new_chat_photo", m.MessageID)
}

func (h *recordingHandler) OnDeleteChatPhoto(_ context.Context, m *telegram.Message) error {
	return h.record("delete_chat_photo", m.MessageID)
}

func (h *recordingHandler) OnGroupChatCreated(_ context.Context, m *telegram.Message) error {
	return h.record("group_chat_created", m.MessageID)
}

func (h *recordingHandler) OnCallback(_ context.Context, cb *telegram.CallbackQuery) error {
	return h.record("callback:"+cb.ID, 0)
}

// countingObserver counts observer notifications.
type countingObserver struct {
	mu       sync.Mutex
	received map[string]int
	failed   map[string]int
	timeouts int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{received: map[string]int{}, failed: map[string]int{}}
}

func (o *countingObserver) UpdateReceived(source string) {
	o.mu.Lock()
	o.received[source]++
	o.mu.Unlock()
}

func (o *countingObserver) DispatchFailed(source string) {
	o.mu.Lock()
	o.failed[source]++
	o.mu.Unlock()
}

func (o *countingObserver) PollTimeout() {
	o.mu.Lock()
	o.timeouts++
	o.mu.Unlock()
}

func textUpdate(id int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: id,
		Message: &telegram.Message{
			MessageID: id * 10,
			Chat:      telegram.Chat{ID: 1, Type: "private"},
			Text:      text,
		},
	}
}
