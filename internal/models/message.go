package models

// Item types the upstream feed uses for entries that are not user messages.
const (
	ItemTypeActionLog      = "action_log"
	ItemTypeVideoCallEvent = "video_call_event"
)

// Like is a single reaction record on a message.
type Like struct {
	SenderID int64 `json:"sender_id"`
}

// Message represents a single item inside a chat.
type Message struct {
	ItemID    string `json:"item_id"`
	ThreadID  string `json:"thread_id"`
	UserID    int64  `json:"user_id"`
	ItemType  string `json:"item_type"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Likes     []Like `json:"likes"`
}

// MessagePayload is the decoded value of a message-level patch operation.
type MessagePayload struct {
	ItemID    string     `json:"item_id"`
	UserID    int64      `json:"user_id"`
	ItemType  string     `json:"item_type"`
	Text      string     `json:"text"`
	Timestamp int64      `json:"timestamp"`
	Reactions *Reactions `json:"reactions"`
}

// Reactions carries the like records attached to a message payload.
type Reactions struct {
	Likes []Like `json:"likes"`
}

// MessageFromPayload builds a message owned by the thread.
func MessageFromPayload(threadID string, p *MessagePayload) *Message {
	msg := &Message{ItemID: p.ItemID, ThreadID: threadID}
	msg.ApplyPayload(p)
	return msg
}

// ApplyPayload merges a message payload into the message in place.
func (m *Message) ApplyPayload(p *MessagePayload) {
	if p == nil {
		return
	}
	if p.UserID != 0 {
		m.UserID = p.UserID
	}
	if p.ItemType != "" {
		m.ItemType = p.ItemType
	}
	if p.Text != "" {
		m.Text = p.Text
	}
	if p.Timestamp != 0 {
		m.Timestamp = p.Timestamp
	}
	if p.Reactions != nil {
		m.Likes = p.Reactions.Likes
	}
}

// IsSystemItemType reports whether the item type marks a system or call log entry.
func IsSystemItemType(itemType string) bool {
	return itemType == ItemTypeActionLog || itemType == ItemTypeVideoCallEvent
}

// IsSystem reports whether the message is a system or call log entry.
func (m *Message) IsSystem() bool {
	return IsSystemItemType(m.ItemType)
}

// LikeSet returns the ids of users who liked the message as a set.
func (m *Message) LikeSet() map[int64]struct{} {
	set := make(map[int64]struct{}, len(m.Likes))
	for _, l := range m.Likes {
		set[l.SenderID] = struct{}{}
	}
	return set
}
