package telegram

// ReplyMarkup is a keyboard layout attached to an outgoing message.
// It is implemented by InlineKeyboardMarkup, ReplyKeyboardMarkup,
// ReplyKeyboardRemove and ForceReply.
type ReplyMarkup interface {
	replyMarkup()
}

// InlineKeyboardMarkup is a keyboard shown below the message it belongs to.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is one button of an inline keyboard.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// ReplyKeyboardMarkup replaces the client keyboard with custom buttons.
type ReplyKeyboardMarkup struct {
	Keyboard        [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
	Selective       bool               `json:"selective,omitempty"`
}

// KeyboardButton is one button of a reply keyboard.
type KeyboardButton struct {
	Text            string `json:"text"`
	RequestContact  bool   `json:"request_contact,omitempty"`
	RequestLocation bool   `json:"request_location,omitempty"`
}

// ReplyKeyboardRemove hides a custom keyboard.
type ReplyKeyboardRemove struct {
	Selective bool `json:"selective,omitempty"`
}

// MarshalJSON always emits remove_keyboard=true.
func (r ReplyKeyboardRemove) MarshalJSON() ([]byte, error) {
	if r.Selective {
		return []byte(`{"remove_keyboard":true,"selective":true}`), nil
	}
	return []byte(`{"remove_keyboard":true}`), nil
}

// ForceReply asks the client to show a reply interface.
type ForceReply struct {
	Selective bool `json:"selective,omitempty"`
}

// MarshalJSON always emits force_reply=true.
func (f ForceReply) MarshalJSON() ([]byte, error) {
	if f.Selective {
		return []byte(`{"force_reply":true,"selective":true}`), nil
	}
	return []byte(`{"force_reply":true}`), nil
}

func (InlineKeyboardMarkup) replyMarkup() {}
func (ReplyKeyboardMarkup) replyMarkup()  {}
func (ReplyKeyboardRemove) replyMarkup()  {}
func (ForceReply) replyMarkup()           {}
