package telegram

import "encoding/json"

// ContentKind identifies which content field of a Message is populated.
type ContentKind int

// Content kinds in dispatch priority order.
const (
	ContentUnknown ContentKind = iota
	ContentText
	ContentAudio
	ContentDocument
	ContentPhoto
	ContentSticker
	ContentVideo
	ContentContact
	ContentLocation
	ContentNewChatParticipant
	ContentLeftChatParticipant
	ContentNewChatTitle
	ContentNewChatPhoto
	ContentDeleteChatPhoto
	ContentGroupChatCreated
	ContentVoice
)

// contentKeys maps JSON keys to kinds, in priority order.
var contentKeys = []struct {
	key  string
	kind ContentKind
}{
	{"text", ContentText},
	{"audio", ContentAudio},
	{"document", ContentDocument},
	{"photo", ContentPhoto},
	{"sticker", ContentSticker},
	{"video", ContentVideo},
	{"contact", ContentContact},
	{"location", ContentLocation},
	{"new_chat_participant", ContentNewChatParticipant},
	{"left_chat_participant", ContentLeftChatParticipant},
	{"new_chat_title", ContentNewChatTitle},
	{"new_chat_photo", ContentNewChatPhoto},
	{"delete_chat_photo", ContentDeleteChatPhoto},
	{"group_chat_created", ContentGroupChatCreated},
	{"voice", ContentVoice},
}

// String returns the JSON field name of the kind, or "unknown".
func (k ContentKind) String() string {
	if k <= ContentUnknown || int(k) > len(contentKeys) {
		return "unknown"
	}
	return contentKeys[k-1].key
}

// UnmarshalJSON decodes a message and records its content kind from the
// keys present in the payload. A key holding null counts as absent.
func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*m = Message(p)
	m.kind = ContentUnknown
	for _, ck := range contentKeys {
		if raw, ok := fields[ck.key]; ok && string(raw) != "null" {
			m.kind = ck.kind
			break
		}
	}
	m.fieldKind = m.kindFromFields()
	return nil
}

// Kind returns the message's content kind. A decoded message reports the
// key set seen on the wire until its content fields are changed; after
// that, and for messages built in code, the first non-zero content field
// decides.
func (m *Message) Kind() ContentKind {
	current := m.kindFromFields()
	if m.kind != ContentUnknown && current == m.fieldKind {
		return m.kind
	}
	return current
}

func (m *Message) kindFromFields() ContentKind {
	switch {
	case m.Text != "":
		return ContentText
	case m.Audio != nil:
		return ContentAudio
	case m.Document != nil:
		return ContentDocument
	case m.Photo != nil:
		return ContentPhoto
	case m.Sticker != nil:
		return ContentSticker
	case m.Video != nil:
		return ContentVideo
	case m.Contact != nil:
		return ContentContact
	case m.Location != nil:
		return ContentLocation
	case m.NewChatParticipant != nil:
		return ContentNewChatParticipant
	case m.LeftChatParticipant != nil:
		return ContentLeftChatParticipant
	case m.NewChatTitle != "":
		return ContentNewChatTitle
	case m.NewChatPhoto != nil:
		return ContentNewChatPhoto
	case m.DeleteChatPhoto:
		return ContentDeleteChatPhoto
	case m.GroupChatCreated:
		return ContentGroupChatCreated
	case m.Voice != nil:
		return ContentVoice
	}
	return ContentUnknown
}
