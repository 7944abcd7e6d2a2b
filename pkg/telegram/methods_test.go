package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestMethodRequests(t *testing.T) {
	const chatMessage = `{"message_id":9,"chat":{"id":1,"type":"private"},"date":0,"text":"x"}`

	tests := []struct {
		name   string
		method string
		params map[string]string
		result string
		call   func(ctx context.Context, c *Client) (any, error)
		check  func(t *testing.T, got any)
	}{
		{
			name:   "sendAudio",
			method: "sendAudio",
			params: map[string]string{"chat_id": "1", "audio": "aud1", "title": "Song"},
			result: `{"message_id":2,"chat":{"id":1,"type":"private"},"date":0,"audio":{"file_id":"aud1","duration":3}}`,
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.SendAudio(ctx, SendAudioRequest{ChatID: 1, Audio: FileRef("aud1"), Title: "Song"})
			},
			check: func(t *testing.T, got any) {
				msg := got.(*Message)
				if msg.Kind() != ContentAudio || msg.Audio.Duration != 3 {
					t.Errorf("message = %+v", msg)
				}
			},
		},
		{
			name:   "sendSticker",
			method: "sendSticker",
			params: map[string]string{"chat_id": "1", "sticker": "stk", "reply_to_message_id": "4"},
			result: `{"message_id":3,"chat":{"id":1,"type":"private"},"date":0,"sticker":{"file_id":"stk","width":512,"height":512}}`,
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.SendSticker(ctx, SendStickerRequest{ChatID: 1, Sticker: FileRef("stk"), ReplyToMessageID: 4})
			},
			check: func(t *testing.T, got any) {
				if msg := got.(*Message); msg.Kind() != ContentSticker {
					t.Errorf("Kind() = %v, want sticker", msg.Kind())
				}
			},
		},
		{
			name:   "sendVideo",
			method: "sendVideo",
			params: map[string]string{"chat_id": "1", "video": "vid", "duration": "5"},
			result: `{"message_id":4,"chat":{"id":1,"type":"private"},"date":0,"video":{"file_id":"vid","width":1,"height":1,"duration":5}}`,
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.SendVideo(ctx, SendVideoRequest{ChatID: 1, Video: FileRef("vid"), Duration: 5})
			},
			check: func(t *testing.T, got any) {
				if msg := got.(*Message); msg.Kind() != ContentVideo || msg.Video.Duration != 5 {
					t.Errorf("message = %+v", msg)
				}
			},
		},
		{
			name:   "sendLocation",
			method: "sendLocation",
			params: map[string]string{"chat_id": "8", "latitude": "48.85", "longitude": "2.35", "reply_to_message_id": "3"},
			result: `{"message_id":5,"chat":{"id":8,"type":"private"},"date":0,"location":{"latitude":48.85,"longitude":2.35}}`,
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.SendLocation(ctx, SendLocationRequest{ChatID: 8, Latitude: 48.85, Longitude: 2.35, ReplyToMessageID: 3})
			},
			check: func(t *testing.T, got any) {
				msg := got.(*Message)
				if msg.Kind() != ContentLocation || msg.Location.Longitude != 2.35 {
					t.Errorf("message = %+v", msg)
				}
			},
		},
		{
			name:   "forwardMessage",
			method: "forwardMessage",
			params: map[string]string{"chat_id": "1", "from_chat_id": "-100", "message_id": "9"},
			result: chatMessage,
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.ForwardMessage(ctx, ForwardMessageRequest{ChatID: 1, FromChatID: -100, MessageID: 9})
			},
			check: func(t *testing.T, got any) {
				if msg := got.(*Message); msg.MessageID != 9 {
					t.Errorf("MessageID = %d, want 9", msg.MessageID)
				}
			},
		},
		{
			name:   "editMessageCaption chat message",
			method: "editMessageCaption",
			params: map[string]string{"chat_id": "1", "message_id": "9", "caption": "new"},
			result: chatMessage,
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.EditMessageCaption(ctx, EditMessageCaptionRequest{
					MessageRef: MessageRef{ChatID: 1, MessageID: 9},
					Caption:    "new",
				})
			},
			check: func(t *testing.T, got any) {
				if msg := got.(*Message); msg == nil || msg.MessageID != 9 {
					t.Errorf("message = %+v", msg)
				}
			},
		},
		{
			name:   "editMessageCaption inline message",
			method: "editMessageCaption",
			params: map[string]string{"inline_message_id": "in1", "caption": "c"},
			result: `true`,
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.EditMessageCaption(ctx, EditMessageCaptionRequest{
					MessageRef: MessageRef{InlineMessageID: "in1"},
					Caption:    "c",
				})
			},
			check: func(t *testing.T, got any) {
				if msg := got.(*Message); msg != nil {
					t.Errorf("inline edit = %+v, want nil", msg)
				}
			},
		},
		{
			name:   "editMessageReplyMarkup",
			method: "editMessageReplyMarkup",
			params: map[string]string{"chat_id": "1", "message_id": "9", "reply_markup": `{"remove_keyboard":true}`},
			result: chatMessage,
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.EditMessageReplyMarkup(ctx, EditMessageReplyMarkupRequest{
					MessageRef:  MessageRef{ChatID: 1, MessageID: 9},
					ReplyMarkup: ReplyKeyboardRemove{},
				})
			},
			check: func(t *testing.T, got any) {
				if msg := got.(*Message); msg == nil || msg.MessageID != 9 {
					t.Errorf("message = %+v", msg)
				}
			},
		},
		{
			name:   "getUserProfilePhotos",
			method: "getUserProfilePhotos",
			params: map[string]string{"user_id": "77", "offset": "1", "limit": "5"},
			result: `{"total_count":3,"photos":[[{"file_id":"a","width":1,"height":1},{"file_id":"a2","width":2,"height":2}]]}`,
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.GetUserProfilePhotos(ctx, GetUserProfilePhotosRequest{UserID: 77, Offset: 1, Limit: 5})
			},
			check: func(t *testing.T, got any) {
				photos := got.(*UserProfilePhotos)
				if photos.TotalCount != 3 || len(photos.Photos) != 1 || len(photos.Photos[0]) != 2 {
					t.Errorf("photos = %+v", photos)
				}
			},
		},
		{
			name:   "getUserProfilePhotos default limit",
			method: "getUserProfilePhotos",
			params: map[string]string{"user_id": "77", "offset": "0", "limit": "100"},
			result: `{"total_count":0,"photos":[]}`,
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.GetUserProfilePhotos(ctx, GetUserProfilePhotosRequest{UserID: 77})
			},
			check: func(t *testing.T, got any) {
				if photos := got.(*UserProfilePhotos); photos.TotalCount != 0 {
					t.Errorf("photos = %+v", photos)
				}
			},
		},
		{
			name:   "getFile",
			method: "getFile",
			params: map[string]string{"file_id": "f1"},
			result: `{"file_id":"f1","file_size":12,"file_path":"documents/a.pdf"}`,
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.GetFile(ctx, "f1")
			},
			check: func(t *testing.T, got any) {
				f := got.(*File)
				if f.FilePath != "documents/a.pdf" || f.FileSize != 12 {
					t.Errorf("file = %+v", f)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("method = %s, want GET", r.Method)
				}
				if want := "/botTOKEN/" + tt.method; r.URL.Path != want {
					t.Errorf("path = %s, want %s", r.URL.Path, want)
				}
				q := r.URL.Query()
				if len(q) != len(tt.params) {
					t.Errorf("query = %s, want exactly %v", r.URL.RawQuery, tt.params)
				}
				for k, want := range tt.params {
					if got := q.Get(k); got != want {
						t.Errorf("%s = %q, want %q", k, got, want)
					}
				}
				writeRaw(w, `{"ok":true,"result":`+tt.result+`}`)
			}))
			defer srv.Close()

			got, err := tt.call(context.Background(), newTestClient(t, "TOKEN", srv))
			if err != nil {
				t.Fatalf("%s error: %v", tt.method, err)
			}
			tt.check(t, got)
		})
	}
}

func TestUploadOutlivesClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(300 * time.Millisecond):
		}
		writeRaw(w, sentPhoto)
	}))
	defer srv.Close()

	client, err := NewClient("TOKEN",
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}),
	)
	if err != nil {
		t.Fatal(err)
	}

	msg, err := client.SendPhoto(context.Background(), SendPhotoRequest{
		ChatID: 42,
		Photo:  FileBytes("cat.jpg", []byte("jpeg")),
	})
	if err != nil {
		t.Fatalf("SendPhoto() upload error: %v", err)
	}
	if msg.Kind() != ContentPhoto {
		t.Errorf("Kind() = %v, want photo", msg.Kind())
	}

	// The same slow server still trips the timeout for GET calls.
	if _, err := client.GetMe(context.Background()); !IsTimeout(err) {
		t.Errorf("GetMe() error = %v, want timeout", err)
	}
}

func TestUploadBoundedByContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := newTestClient(t, "TOKEN", srv)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.SendDocument(ctx, SendDocumentRequest{
		ChatID:   1,
		Document: FileBytes("big.bin", make([]byte, 1024)),
	})
	if !IsTimeout(err) {
		t.Fatalf("SendDocument() error = %v, want timeout", err)
	}
}

// unencodableMarkup satisfies ReplyMarkup but cannot be marshalled.
type unencodableMarkup struct {
	InlineKeyboardMarkup
	OnPress func() `json:"on_press"`
}

func TestReplyMarkupEncodeErrorIsReturned(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeRaw(w, sentPhoto)
	}))
	defer srv.Close()
	client := newTestClient(t, "TOKEN", srv)
	ctx := context.Background()

	if _, err := client.SendMessage(ctx, SendMessageRequest{ChatID: 1, Text: "q", ReplyMarkup: unencodableMarkup{}}); err == nil {
		t.Error("SendMessage() with unencodable markup: expected error")
	}
	if _, err := client.SendPhoto(ctx, SendPhotoRequest{
		ChatID:      1,
		Photo:       FileBytes("a.png", []byte{1}),
		ReplyMarkup: unencodableMarkup{},
	}); err == nil {
		t.Error("SendPhoto() upload with unencodable markup: expected error")
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("requests sent = %d, want 0", got)
	}
}
