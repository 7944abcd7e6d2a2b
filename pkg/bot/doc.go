// Package bot routes incoming Telegram updates to user handlers.
//
// A Dispatcher maps each message to exactly one Handler hook by its content
// kind. Updates reach the Dispatcher either through a Poller, which long-polls
// getUpdates and manages the offset cursor, or through a WebhookHandler
// mounted on an HTTP server. Bot ties the two together and ensures only one
// delivery mode is active at a time.
package bot
