// Package telegram is a small client for the Telegram Bot API.
//
// Every API method is exposed as a typed Client method. Calls go out as a
// GET with query parameters, or as a multipart/form-data POST when a media
// argument carries raw content instead of a file_id or URL. Responses are
// unwrapped from the {"ok", "result"} envelope; ok=false becomes *APIError
// and a missed client deadline becomes *TimeoutError.
//
// Incoming updates decode into Update, Message and CallbackQuery. Message
// records which content field arrived on the wire (see ContentKind) so
// callers can switch on Message.Kind instead of probing optional fields.
//
// No external Telegram library is used: the package talks to the Bot API
// with net/http and encoding/json, and traces each call with OpenTelemetry.
package telegram
