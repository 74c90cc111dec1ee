package models

// User represents an account referenced by chats and messages.
//
// Users are shared by reference between the cache and event payloads; the
// engine merges updates into the same instance rather than replacing it.
type User struct {
	PK            int64  `json:"pk" db:"pk"`
	Username      string `json:"username" db:"username"`
	FullName      string `json:"full_name" db:"full_name"`
	ProfilePicURL string `json:"profile_pic_url" db:"profile_pic_url"`
	IsPrivate     bool   `json:"is_private" db:"is_private"`
	IsVerified    bool   `json:"is_verified" db:"is_verified"`
}

// Merge copies the non-empty fields of other into u.
func (u *User) Merge(other *User) {
	if other == nil {
		return
	}
	if other.Username != "" {
		u.Username = other.Username
	}
	if other.FullName != "" {
		u.FullName = other.FullName
	}
	if other.ProfilePicURL != "" {
		u.ProfilePicURL = other.ProfilePicURL
	}
	u.IsPrivate = other.IsPrivate
	u.IsVerified = other.IsVerified
}
