package bot

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/flemzord/tgbot/pkg/telegram"
)

const (
	// SecretTokenHeader carries the secret registered with setWebhook.
	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

	maxWebhookBody = 1 << 20 // 1 MiB
)

// WebhookConfig configures a WebhookHandler.
type WebhookConfig struct {
	// Secret, when set, must match the SecretTokenHeader of every request.
	Secret string

	Logger   *slog.Logger
	Observer Observer

	// OnError handles dispatch errors. A nil return answers 200, an error
	// answers 500 so the API redelivers. The default logs and returns err.
	OnError ErrorFunc
}

// WebhookHandler is the HTTP endpoint for push-delivered updates.
// Each request is handled independently; concurrent requests dispatch
// concurrently.
type WebhookHandler struct {
	dispatcher *Dispatcher
	secret     string
	logger     *slog.Logger
	observer   Observer
	onError    ErrorFunc
}

var _ http.Handler = (*WebhookHandler)(nil)

// NewWebhookHandler creates a webhook endpoint dispatching through d.
func NewWebhookHandler(d *Dispatcher, cfg WebhookConfig) *WebhookHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	h := &WebhookHandler{
		dispatcher: d,
		secret:     cfg.Secret,
		logger:     cfg.Logger.With("component", "webhook"),
		observer:   cfg.Observer,
		onError:    cfg.OnError,
	}
	if h.onError == nil {
		h.onError = h.logDispatchError
	}
	return h
}

// ServeHTTP decodes one update and dispatches it.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.secret != "" {
		token := r.Header.Get(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(h.secret), []byte(token)) != 1 {
			h.logger.Warn("webhook rejected: invalid secret token", "remote", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, "invalid secret token")
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var update telegram.Update
	if err := json.Unmarshal(body, &update); err != nil {
		h.logger.Debug("webhook rejected: invalid update JSON", "error", err)
		writeError(w, http.StatusBadRequest, "invalid update JSON")
		return
	}

	h.observer.UpdateReceived(SourceWebhook)
	if err := h.dispatcher.DispatchUpdate(r.Context(), &update); err != nil {
		h.observer.DispatchFailed(SourceWebhook)
		if herr := h.onError(r.Context(), &update, err); herr != nil {
			writeError(w, http.StatusInternalServerError, "dispatch failed")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *WebhookHandler) logDispatchError(_ context.Context, u *telegram.Update, err error) error {
	h.logger.Error("dispatch failed", "update_id", u.UpdateID, "error", err)
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
