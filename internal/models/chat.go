package models

// Chat represents a direct thread, group or one-to-one.
//
// A chat is created on first reference and patched in place afterwards; it is
// never deleted locally. Messages are owned by the chat, keyed by item id.
type Chat struct {
	ThreadID     string              `json:"thread_id"`
	Title        string              `json:"thread_title"`
	UserIDs      []int64             `json:"user_ids"`
	AdminUserIDs []int64             `json:"admin_user_ids"`
	VideoCallID  string              `json:"video_call_id"`
	Pending      bool                `json:"pending"`
	Messages     map[string]*Message `json:"-"`
}

// ThreadPayload is the decoded value of a thread-level patch operation and the
// thread shape returned by the upstream inbox endpoints.
type ThreadPayload struct {
	ThreadID     string  `json:"thread_id"`
	ThreadTitle  *string `json:"thread_title"`
	Users        []*User `json:"users"`
	AdminUserIDs []int64 `json:"admin_user_ids"`
	VideoCallID  string  `json:"video_call_id"`
	Pending      bool    `json:"pending"`
}

// NewChat constructs an empty chat for the thread id.
func NewChat(threadID string) *Chat {
	return &Chat{ThreadID: threadID, Messages: make(map[string]*Message)}
}

// ChatFromPayload builds a chat from a full thread payload.
func ChatFromPayload(threadID string, p *ThreadPayload) *Chat {
	chat := NewChat(threadID)
	chat.ApplyPayload(p)
	return chat
}

// ApplyPayload merges a thread payload into the chat in place.
func (c *Chat) ApplyPayload(p *ThreadPayload) {
	if p == nil {
		return
	}
	if p.ThreadTitle != nil {
		c.Title = *p.ThreadTitle
	}
	if p.Users != nil {
		ids := make([]int64, 0, len(p.Users))
		for _, u := range p.Users {
			ids = append(ids, u.PK)
		}
		c.UserIDs = ids
	}
	if p.AdminUserIDs != nil {
		c.AdminUserIDs = p.AdminUserIDs
	}
	c.VideoCallID = p.VideoCallID
	// Approval (pending -> false) is driven through the store's pending view,
	// not inferred from thread payloads.
	if p.Pending {
		c.Pending = true
	}
}

// InCall reports whether the thread has an active call.
func (c *Chat) InCall() bool {
	return c.VideoCallID != ""
}

// MemberSet returns the member ids as a set.
func (c *Chat) MemberSet() map[int64]struct{} {
	set := make(map[int64]struct{}, len(c.UserIDs))
	for _, id := range c.UserIDs {
		set[id] = struct{}{}
	}
	return set
}

// IsAdmin reports whether the user id is on the admin list.
func (c *Chat) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
