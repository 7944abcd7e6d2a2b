package bot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/flemzord/tgbot/pkg/telegram"
)

func decodeMessage(t *testing.T, payload string) *telegram.Message {
	t.Helper()
	var m telegram.Message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	return &m
}

func TestDispatchMessageRoutesExactlyOneHook(t *testing.T) {
	tests := []struct {
		payload string
		want    string
	}{
		{`{"message_id":1,"text":"hi"}`, "text"},
		{`{"message_id":1,"audio":{"file_id":"a"}}`, "audio"},
		{`{"message_id":1,"document":{"file_id":"d"}}`, "document"},
		{`{"message_id":1,"photo":[{"file_id":"p"}]}`, "photo"},
		{`{"message_id":1,"sticker":{"file_id":"s"}}`, "sticker"},
		{`{"message_id":1,"video":{"file_id":"v"}}`, "video"},
		{`{"message_id":1,"contact":{"phone_number":"1","first_name":"A"}}`, "contact"},
		{`{"message_id":1,"location":{"latitude":1,"longitude":2}}`, "location"},
		{`{"message_id":1,"new_chat_participant":{"id":2,"first_name":"B"}}`, "new_chat_participant"},
		{`{"message_id":1,"left_chat_participant":{"id":2,"first_name":"B"}}`, "left_chat_participant"},
		{`{"message_id":1,"new_chat_title":"t"}`, "new_chat_title"},
		{`{"message_id":1,"new_chat_photo":[{"file_id":"p"}]}`, "new_chat_photo"},
		{`{"message_id":1,"delete_chat_photo":true}`, "delete_chat_photo"},
		{`{"message_id":1,"group_chat_created":true}`, "group_chat_created"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			h := &recordingHandler{}
			d := NewDispatcher(h)
			if err := d.DispatchMessage(context.Background(), decodeMessage(t, tt.payload)); err != nil {
				t.Fatalf("DispatchMessage() error: %v", err)
			}
			calls, _ := h.snapshot()
			if len(calls) != 1 || calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", calls, tt.want)
			}
		})
	}
}

func TestDispatchMessageVoiceIsDropped(t *testing.T) {
	h := &recordingHandler{}
	d := NewDispatcher(h)
	err := d.DispatchMessage(context.Background(), decodeMessage(t, `{"message_id":1,"voice":{"file_id":"o","duration":1}}`))
	if err != nil {
		t.Fatalf("DispatchMessage(voice) error: %v", err)
	}
	if calls, _ := h.snapshot(); len(calls) != 0 {
		t.Errorf("calls = %v, want none", calls)
	}
}

func TestDispatchMessageUnrecognized(t *testing.T) {
	h := &recordingHandler{}
	d := NewDispatcher(h)
	err := d.DispatchMessage(context.Background(), decodeMessage(t, `{"message_id":7,"chat":{"id":3,"type":"group"},"pinned_message":{"message_id":1}}`))

	var unrec *UnrecognizedMessageError
	if !errors.As(err, &unrec) {
		t.Fatalf("DispatchMessage() error = %v, want *UnrecognizedMessageError", err)
	}
	if unrec.MessageID != 7 || unrec.ChatID != 3 {
		t.Errorf("error = %+v", unrec)
	}
	if calls, _ := h.snapshot(); len(calls) != 0 {
		t.Errorf("calls = %v, want none", calls)
	}
}

func TestDispatchMessagePropagatesHandlerError(t *testing.T) {
	want := errors.New("boom")
	h := &recordingHandler{err: want}
	d := NewDispatcher(h)
	err := d.DispatchMessage(context.Background(), &telegram.Message{MessageID: 1, Text: "x"})
	if !errors.Is(err, want) {
		t.Fatalf("DispatchMessage() error = %v, want %v", err, want)
	}
}

func TestDispatchCallbackIsUnconditional(t *testing.T) {
	h := &recordingHandler{}
	d := NewDispatcher(h)
	if err := d.DispatchCallback(context.Background(), &telegram.CallbackQuery{ID: "q"}); err != nil {
		t.Fatalf("DispatchCallback() error: %v", err)
	}
	calls, _ := h.snapshot()
	if len(calls) != 1 || calls[0] != "callback:q" {
		t.Errorf("calls = %v", calls)
	}
}

func TestDispatchUpdate(t *testing.T) {
	tests := []struct {
		name   string
		update telegram.Update
		want   []string
	}{
		{"message", textUpdate(1, "hi"), []string{"text"}},
		{"callback", telegram.Update{UpdateID: 2, CallbackQuery: &telegram.CallbackQuery{ID: "c"}}, []string{"callback:c"}},
		{
			"message wins over callback",
			telegram.Update{UpdateID: 3, Message: &telegram.Message{Text: "m"}, CallbackQuery: &telegram.CallbackQuery{ID: "c"}},
			[]string{"text"},
		},
		{"empty", telegram.Update{UpdateID: 4}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHandler{}
			d := NewDispatcher(h)
			if err := d.DispatchUpdate(context.Background(), &tt.update); err != nil {
				t.Fatalf("DispatchUpdate() error: %v", err)
			}
			calls, _ := h.snapshot()
			if len(calls) != len(tt.want) {
				t.Fatalf("calls = %v, want %v", calls, tt.want)
			}
			for i := range calls {
				if calls[i] != tt.want[i] {
					t.Errorf("calls[%d] = %q, want %q", i, calls[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewDispatcherNilHandler(t *testing.T) {
	d := NewDispatcher(nil)
	if err := d.DispatchMessage(context.Background(), &telegram.Message{Text: "x"}); err != nil {
		t.Fatalf("DispatchMessage() error: %v", err)
	}
}
