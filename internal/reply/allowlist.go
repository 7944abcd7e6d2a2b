package reply

import (
	"strconv"

	"github.com/flemzord/tgbot/pkg/telegram"
)

// AllowList controls which users and chats the bot answers. An empty or
// nil AllowList denies everyone.
type AllowList struct {
	users map[int64]struct{}
	chats map[int64]struct{}
}

// NewAllowList creates an AllowList with O(1) lookups.
func NewAllowList(users, chats []int64) *AllowList {
	a := &AllowList{
		users: make(map[int64]struct{}, len(users)),
		chats: make(map[int64]struct{}, len(chats)),
	}
	for _, u := range users {
		a.users[u] = struct{}{}
	}
	for _, c := range chats {
		a.chats[c] = struct{}{}
	}
	return a
}

// IsAllowed reports whether the sender or the chat is permitted.
//
// Rules:
//   - If both sets are empty, deny.
//   - If the sender's ID matches a user entry, allow.
//   - If the chat's ID matches a chat entry, allow.
//   - Otherwise, deny.
func (a *AllowList) IsAllowed(userID, chatID int64) bool {
	if a == nil || (len(a.users) == 0 && len(a.chats) == 0) {
		return false
	}
	if _, ok := a.users[userID]; ok && userID != 0 {
		return true
	}
	if _, ok := a.chats[chatID]; ok {
		return true
	}
	return false
}

// allowsMessage applies IsAllowed to a message.
func (a *AllowList) allowsMessage(msg *telegram.Message) bool {
	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}
	return a.IsAllowed(userID, msg.Chat.ID)
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
