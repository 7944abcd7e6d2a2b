package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sentPhoto = `{"ok":true,"result":{"message_id":3,"chat":{"id":42,"type":"private"},"date":0,"photo":[{"file_id":"p1","width":90,"height":90}]}}`

func TestSendPhotoRemoteUsesGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if got := r.URL.Query().Get("photo"); got != "AgACAgIAAxkB" {
			t.Errorf("photo = %q", got)
		}
		writeRaw(w, sentPhoto)
	}))
	defer srv.Close()

	client := newTestClient(t, "TOKEN", srv)
	msg, err := client.SendPhoto(context.Background(), SendPhotoRequest{
		ChatID: 42,
		Photo:  FileRef("AgACAgIAAxkB"),
	})
	if err != nil {
		t.Fatalf("SendPhoto() error: %v", err)
	}
	if msg.Kind() != ContentPhoto {
		t.Errorf("Kind() = %v, want photo", msg.Kind())
	}
}

func TestSendPhotoUploadUsesMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("upload must not use the query string, got %q", r.URL.RawQuery)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("chat_id"); got != "42" {
			t.Errorf("chat_id = %q, want 42", got)
		}
		if got := r.FormValue("caption"); got != "cat" {
			t.Errorf("caption = %q, want cat", got)
		}
		file, header, err := r.FormFile("photo")
		if err != nil {
			t.Fatalf("FormFile(photo): %v", err)
		}
		defer file.Close()
		if header.Filename != "cat.jpg" {
			t.Errorf("filename = %q, want cat.jpg", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "JPEGDATA" {
			t.Errorf("file content = %q", data)
		}
		writeRaw(w, sentPhoto)
	}))
	defer srv.Close()

	client := newTestClient(t, "TOKEN", srv)
	msg, err := client.SendPhoto(context.Background(), SendPhotoRequest{
		ChatID:  42,
		Photo:   FileBytes("cat.jpg", []byte("JPEGDATA")),
		Caption: "cat",
	})
	if err != nil {
		t.Fatalf("SendPhoto() error: %v", err)
	}
	if msg.MessageID != 3 {
		t.Errorf("MessageID = %d, want 3", msg.MessageID)
	}
}

func TestSendDocumentFromReader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Fatalf("FormFile(document): %v", err)
		}
		defer file.Close()
		if header.Filename != "notes.txt" {
			t.Errorf("filename = %q", header.Filename)
		}
		writeRaw(w, `{"ok":true,"result":{"message_id":4,"chat":{"id":1,"type":"private"},"date":0,"document":{"file_id":"d"}}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, "TOKEN", srv)
	msg, err := client.SendDocument(context.Background(), SendDocumentRequest{
		ChatID:   1,
		Document: FileReader("notes.txt", strings.NewReader("hello")),
	})
	if err != nil {
		t.Fatalf("SendDocument() error: %v", err)
	}
	if msg.Kind() != ContentDocument {
		t.Errorf("Kind() = %v, want document", msg.Kind())
	}
}

func TestReplyMarkupEncoding(t *testing.T) {
	markup := InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{{Text: "Yes", CallbackData: "yes"}}},
	}
	want := `{"inline_keyboard":[[{"text":"Yes","callback_data":"yes"}]]}`

	t.Run("get sends JSON text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("reply_markup"); got != want {
				t.Errorf("reply_markup = %s, want %s", got, want)
			}
			writeRaw(w, `{"ok":true,"result":{"message_id":1,"chat":{"id":1,"type":"private"},"date":0,"text":"q"}}`)
		}))
		defer srv.Close()

		client := newTestClient(t, "TOKEN", srv)
		_, err := client.SendMessage(context.Background(), SendMessageRequest{
			ChatID:      1,
			Text:        "q",
			ReplyMarkup: markup,
		})
		if err != nil {
			t.Fatalf("SendMessage() error: %v", err)
		}
	})

	t.Run("post sends structured value", func(t *testing.T) {
		p := SendPhotoRequest{
			ChatID:      1,
			Photo:       FileBytes("a.png", []byte{1}),
			ReplyMarkup: markup,
		}.params(TransportPost)
		if _, ok := p["reply_markup"].(InlineKeyboardMarkup); !ok {
			t.Fatalf("reply_markup = %T, want InlineKeyboardMarkup", p["reply_markup"])
		}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("ParseMultipartForm: %v", err)
			}
			if got := r.FormValue("reply_markup"); got != want {
				t.Errorf("reply_markup = %s, want %s", got, want)
			}
			writeRaw(w, sentPhoto)
		}))
		defer srv.Close()

		client := newTestClient(t, "TOKEN", srv)
		if _, err := client.Post(context.Background(), "sendPhoto", p); err != nil {
			t.Fatalf("Post() error: %v", err)
		}
	})
}

func TestOptionalArgumentsOmitted(t *testing.T) {
	p := SendMessageRequest{ChatID: 7, Text: "x"}.params(TransportGet)
	for _, key := range []string{"parse_mode", "disable_web_page_preview", "reply_to_message_id", "reply_markup"} {
		if _, ok := p[key]; ok {
			t.Errorf("params contain absent optional %q", key)
		}
	}
	if len(p) != 2 {
		t.Errorf("len(params) = %d, want 2", len(p))
	}
}

func TestQueryRejectsUploadContent(t *testing.T) {
	p := Params{}
	p.SetFile("photo", FileBytes("a.png", []byte{1}))
	if _, err := p.query(); err == nil {
		t.Fatal("query() should reject file content")
	}
}

func TestKeyboardRemoveAndForceReplyMarshal(t *testing.T) {
	tests := []struct {
		markup ReplyMarkup
		want   string
	}{
		{ReplyKeyboardRemove{}, `{"remove_keyboard":true}`},
		{ReplyKeyboardRemove{Selective: true}, `{"remove_keyboard":true,"selective":true}`},
		{ForceReply{}, `{"force_reply":true}`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.markup)
		if err != nil {
			t.Fatalf("Marshal(%T): %v", tt.markup, err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal(%T) = %s, want %s", tt.markup, data, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"s", "s"},
		{42, "42"},
		{int64(-100123), "-100123"},
		{true, "true"},
		{48.8584, "48.8584"},
	}
	for _, tt := range tests {
		got, err := formatValue(tt.in)
		if err != nil {
			t.Fatalf("formatValue(%v) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
