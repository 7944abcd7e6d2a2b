package telegram

// Request types for the Bot API methods. Zero-valued optional fields are
// treated as absent and never reach the wire.

// DefaultPageLimit is the page size used by getUpdates and getUserProfilePhotos.
const DefaultPageLimit = 100

// GetUpdatesRequest holds the arguments of getUpdates.
type GetUpdatesRequest struct {
	Offset  int64
	Limit   int
	Timeout int // long-poll wait in seconds
}

func (r GetUpdatesRequest) params() Params {
	p := Params{}
	p.Set("offset", r.Offset)
	limit := r.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	p.Set("limit", limit)
	p.Set("timeout", r.Timeout)
	return p
}

// SetWebhookRequest holds the arguments of setWebhook. An empty URL
// removes the current webhook.
type SetWebhookRequest struct {
	URL         string
	SecretToken string
}

func (r SetWebhookRequest) params() Params {
	if r.URL == "" {
		return nil
	}
	p := Params{}
	p.Set("url", r.URL)
	p.SetString("secret_token", r.SecretToken)
	return p
}

// SendMessageRequest holds the arguments of sendMessage.
type SendMessageRequest struct {
	ChatID                int64
	Text                  string
	ParseMode             string
	DisableWebPagePreview bool
	ReplyToMessageID      int64
	ReplyMarkup           ReplyMarkup
}

func (r SendMessageRequest) params(t Transport) Params {
	p := Params{}
	p.Set("chat_id", r.ChatID)
	p.Set("text", r.Text)
	p.SetString("parse_mode", r.ParseMode)
	p.SetBool("disable_web_page_preview", r.DisableWebPagePreview)
	p.SetInt("reply_to_message_id", r.ReplyToMessageID)
	p.SetMarkup("reply_markup", r.ReplyMarkup, t)
	return p
}

// AnswerCallbackQueryRequest holds the arguments of answerCallbackQuery.
type AnswerCallbackQueryRequest struct {
	CallbackQueryID string
	Text            string
	ShowAlert       bool
	URL             string
	CacheTime       int
}

func (r AnswerCallbackQueryRequest) params() Params {
	p := Params{}
	p.Set("callback_query_id", r.CallbackQueryID)
	p.SetString("text", r.Text)
	p.SetBool("show_alert", r.ShowAlert)
	p.SetString("url", r.URL)
	p.SetInt("cache_time", int64(r.CacheTime))
	return p
}

// MessageRef addresses a message either by chat and message id or, for
// messages sent via inline mode, by inline message id.
type MessageRef struct {
	ChatID          int64
	MessageID       int64
	InlineMessageID string
}

func (m MessageRef) apply(p Params) {
	p.SetInt("chat_id", m.ChatID)
	p.SetInt("message_id", m.MessageID)
	p.SetString("inline_message_id", m.InlineMessageID)
}

// EditMessageTextRequest holds the arguments of editMessageText.
type EditMessageTextRequest struct {
	MessageRef
	Text                  string
	ParseMode             string
	DisableWebPagePreview bool
	ReplyMarkup           ReplyMarkup
}

func (r EditMessageTextRequest) params(t Transport) Params {
	p := Params{}
	p.Set("text", r.Text)
	r.apply(p)
	p.SetString("parse_mode", r.ParseMode)
	p.SetBool("disable_web_page_preview", r.DisableWebPagePreview)
	p.SetMarkup("reply_markup", r.ReplyMarkup, t)
	return p
}

// EditMessageCaptionRequest holds the arguments of editMessageCaption.
type EditMessageCaptionRequest struct {
	MessageRef
	Caption     string
	ReplyMarkup ReplyMarkup
}

func (r EditMessageCaptionRequest) params(t Transport) Params {
	p := Params{}
	p.Set("caption", r.Caption)
	r.apply(p)
	p.SetMarkup("reply_markup", r.ReplyMarkup, t)
	return p
}

// EditMessageReplyMarkupRequest holds the arguments of editMessageReplyMarkup.
type EditMessageReplyMarkupRequest struct {
	MessageRef
	ReplyMarkup ReplyMarkup
}

func (r EditMessageReplyMarkupRequest) params(t Transport) Params {
	p := Params{}
	r.apply(p)
	p.SetMarkup("reply_markup", r.ReplyMarkup, t)
	return p
}

// ForwardMessageRequest holds the arguments of forwardMessage.
type ForwardMessageRequest struct {
	ChatID     int64
	FromChatID int64
	MessageID  int64
}

func (r ForwardMessageRequest) params() Params {
	p := Params{}
	p.Set("chat_id", r.ChatID)
	p.Set("from_chat_id", r.FromChatID)
	p.Set("message_id", r.MessageID)
	return p
}

// SendPhotoRequest holds the arguments of sendPhoto.
type SendPhotoRequest struct {
	ChatID           int64
	Photo            InputFile
	Caption          string
	ReplyToMessageID int64
	ReplyMarkup      ReplyMarkup
}

func (r SendPhotoRequest) params(t Transport) Params {
	p := Params{}
	p.Set("chat_id", r.ChatID)
	p.SetFile("photo", r.Photo)
	p.SetString("caption", r.Caption)
	p.SetInt("reply_to_message_id", r.ReplyToMessageID)
	p.SetMarkup("reply_markup", r.ReplyMarkup, t)
	return p
}

// SendAudioRequest holds the arguments of sendAudio.
type SendAudioRequest struct {
	ChatID           int64
	Audio            InputFile
	Duration         int
	Performer        string
	Title            string
	ReplyToMessageID int64
	ReplyMarkup      ReplyMarkup
}

func (r SendAudioRequest) params(t Transport) Params {
	p := Params{}
	p.Set("chat_id", r.ChatID)
	p.SetFile("audio", r.Audio)
	p.SetInt("duration", int64(r.Duration))
	p.SetString("performer", r.Performer)
	p.SetString("title", r.Title)
	p.SetInt("reply_to_message_id", r.ReplyToMessageID)
	p.SetMarkup("reply_markup", r.ReplyMarkup, t)
	return p
}

// SendDocumentRequest holds the arguments of sendDocument.
type SendDocumentRequest struct {
	ChatID           int64
	Document         InputFile
	Caption          string
	ReplyToMessageID int64
	ReplyMarkup      ReplyMarkup
}

func (r SendDocumentRequest) params(t Transport) Params {
	p := Params{}
	p.Set("chat_id", r.ChatID)
	p.SetFile("document", r.Document)
	p.SetString("caption", r.Caption)
	p.SetInt("reply_to_message_id", r.ReplyToMessageID)
	p.SetMarkup("reply_markup", r.ReplyMarkup, t)
	return p
}

// SendStickerRequest holds the arguments of sendSticker.
type SendStickerRequest struct {
	ChatID           int64
	Sticker          InputFile
	ReplyToMessageID int64
	ReplyMarkup      ReplyMarkup
}

func (r SendStickerRequest) params(t Transport) Params {
	p := Params{}
	p.Set("chat_id", r.ChatID)
	p.SetFile("sticker", r.Sticker)
	p.SetInt("reply_to_message_id", r.ReplyToMessageID)
	p.SetMarkup("reply_markup", r.ReplyMarkup, t)
	return p
}

// SendVideoRequest holds the arguments of sendVideo.
type SendVideoRequest struct {
	ChatID           int64
	Video            InputFile
	Duration         int
	Caption          string
	ReplyToMessageID int64
	ReplyMarkup      ReplyMarkup
}

func (r SendVideoRequest) params(t Transport) Params {
	p := Params{}
	p.Set("chat_id", r.ChatID)
	p.SetFile("video", r.Video)
	p.SetInt("duration", int64(r.Duration))
	p.SetString("caption", r.Caption)
	p.SetInt("reply_to_message_id", r.ReplyToMessageID)
	p.SetMarkup("reply_markup", r.ReplyMarkup, t)
	return p
}

// SendLocationRequest holds the arguments of sendLocation.
type SendLocationRequest struct {
	ChatID           int64
	Latitude         float64
	Longitude        float64
	ReplyToMessageID int64
	ReplyMarkup      ReplyMarkup
}

func (r SendLocationRequest) params(t Transport) Params {
	p := Params{}
	p.Set("chat_id", r.ChatID)
	p.Set("latitude", r.Latitude)
	p.Set("longitude", r.Longitude)
	p.SetInt("reply_to_message_id", r.ReplyToMessageID)
	p.SetMarkup("reply_markup", r.ReplyMarkup, t)
	return p
}

// GetUserProfilePhotosRequest holds the arguments of getUserProfilePhotos.
type GetUserProfilePhotosRequest struct {
	UserID int64
	Offset int
	Limit  int
}

func (r GetUserProfilePhotosRequest) params() Params {
	p := Params{}
	p.Set("user_id", r.UserID)
	p.Set("offset", r.Offset)
	limit := r.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	p.Set("limit", limit)
	return p
}
