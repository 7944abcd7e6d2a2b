package telegram

import (
	"context"
	"encoding/json"
	"time"
)

// longPollGrace is added to the getUpdates wait to form the request deadline.
const longPollGrace = 10 * time.Second

// GetUpdates fetches incoming updates. When req.Timeout is positive the
// call is a long poll and is bounded by a deadline slightly above it; a
// missed deadline is reported as *TimeoutError.
func (c *Client) GetUpdates(ctx context.Context, req GetUpdatesRequest) ([]Update, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.Timeout)*time.Second+longPollGrace)
		defer cancel()
	}
	updates, err := call[[]Update](ctx, c, "getUpdates", req.params())
	if err != nil {
		return nil, err
	}
	return *updates, nil
}

// SetWebhook registers url as the push target for updates.
// The API's result is undocumented and discarded.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	return c.SetWebhookWith(ctx, SetWebhookRequest{URL: url})
}

// SetWebhookWith is SetWebhook with the full argument set.
func (c *Client) SetWebhookWith(ctx context.Context, req SetWebhookRequest) error {
	_, err := c.Get(ctx, "setWebhook", req.params())
	return err
}

// ClearWebhook removes any webhook registration. Calling it when no
// webhook is set is not an error.
func (c *Client) ClearWebhook(ctx context.Context) error {
	return c.SetWebhookWith(ctx, SetWebhookRequest{})
}

// GetWebhookInfo returns the current webhook registration.
func (c *Client) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	return call[WebhookInfo](ctx, c, "getWebhookInfo", nil)
}

// GetMe returns the bot's user information.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	return call[User](ctx, c, "getMe", nil)
}

// SendMessage sends a text message to the specified chat.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	return call[Message](ctx, c, "sendMessage", req.params(TransportGet))
}

// AnswerCallbackQuery acknowledges a callback query.
func (c *Client) AnswerCallbackQuery(ctx context.Context, req AnswerCallbackQueryRequest) (bool, error) {
	ok, err := call[bool](ctx, c, "answerCallbackQuery", req.params())
	if err != nil {
		return false, err
	}
	return *ok, nil
}

// EditMessageText edits the text of a previously sent message.
// For inline messages the API returns no message and the result is nil.
func (c *Client) EditMessageText(ctx context.Context, req EditMessageTextRequest) (*Message, error) {
	raw, err := c.Get(ctx, "editMessageText", req.params(TransportGet))
	if err != nil {
		return nil, err
	}
	return decodeEdited("editMessageText", raw)
}

// EditMessageCaption edits the caption of a previously sent message.
// For inline messages the result is nil.
func (c *Client) EditMessageCaption(ctx context.Context, req EditMessageCaptionRequest) (*Message, error) {
	raw, err := c.Get(ctx, "editMessageCaption", req.params(TransportGet))
	if err != nil {
		return nil, err
	}
	return decodeEdited("editMessageCaption", raw)
}

// EditMessageReplyMarkup replaces the keyboard of a previously sent message.
// For inline messages the result is nil.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, req EditMessageReplyMarkupRequest) (*Message, error) {
	raw, err := c.Get(ctx, "editMessageReplyMarkup", req.params(TransportGet))
	if err != nil {
		return nil, err
	}
	return decodeEdited("editMessageReplyMarkup", raw)
}

func decodeEdited(method string, raw json.RawMessage) (*Message, error) {
	if string(raw) == "true" {
		return nil, nil
	}
	return decodeResult[Message](method, raw)
}

// ForwardMessage forwards a message from one chat to another.
func (c *Client) ForwardMessage(ctx context.Context, req ForwardMessageRequest) (*Message, error) {
	return call[Message](ctx, c, "forwardMessage", req.params())
}

// SendPhoto sends a photo to the specified chat.
func (c *Client) SendPhoto(ctx context.Context, req SendPhotoRequest) (*Message, error) {
	return upload[Message](ctx, c, "sendPhoto", req.Photo, req.params)
}

// SendAudio sends an audio file to the specified chat.
func (c *Client) SendAudio(ctx context.Context, req SendAudioRequest) (*Message, error) {
	return upload[Message](ctx, c, "sendAudio", req.Audio, req.params)
}

// SendDocument sends a general file to the specified chat.
func (c *Client) SendDocument(ctx context.Context, req SendDocumentRequest) (*Message, error) {
	return upload[Message](ctx, c, "sendDocument", req.Document, req.params)
}

// SendSticker sends a sticker to the specified chat.
func (c *Client) SendSticker(ctx context.Context, req SendStickerRequest) (*Message, error) {
	return upload[Message](ctx, c, "sendSticker", req.Sticker, req.params)
}

// SendVideo sends a video to the specified chat.
func (c *Client) SendVideo(ctx context.Context, req SendVideoRequest) (*Message, error) {
	return upload[Message](ctx, c, "sendVideo", req.Video, req.params)
}

// SendLocation sends a location to the specified chat.
func (c *Client) SendLocation(ctx context.Context, req SendLocationRequest) (*Message, error) {
	return call[Message](ctx, c, "sendLocation", req.params(TransportGet))
}

// SendChatAction shows a status such as "typing" in the chat.
// The API's result is undocumented and discarded.
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	p := Params{}
	p.Set("chat_id", chatID)
	p.Set("action", action)
	_, err := c.Get(ctx, "sendChatAction", p)
	return err
}

// GetUserProfilePhotos returns one page of a user's profile pictures.
func (c *Client) GetUserProfilePhotos(ctx context.Context, req GetUserProfilePhotosRequest) (*UserProfilePhotos, error) {
	return call[UserProfilePhotos](ctx, c, "getUserProfilePhotos", req.params())
}

// AllUserProfilePhotos pages through getUserProfilePhotos until every
// picture has been collected or the API returns an empty page.
func (c *Client) AllUserProfilePhotos(ctx context.Context, userID int64) (*UserProfilePhotos, error) {
	all := &UserProfilePhotos{}
	offset := 0
	for {
		page, err := c.GetUserProfilePhotos(ctx, GetUserProfilePhotosRequest{
			UserID: userID,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		all.TotalCount = page.TotalCount
		all.Photos = append(all.Photos, page.Photos...)
		offset += len(page.Photos)
		if len(page.Photos) == 0 || offset >= page.TotalCount {
			return all, nil
		}
	}
}

// GetFile retrieves basic info about a file and prepares it for downloading.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	p := Params{}
	p.Set("file_id", fileID)
	return call[File](ctx, c, "getFile", p)
}
