package models

import "encoding/json"

// Push categories the engine maps to dedicated events. Anything else falls
// through to the catch-all push event.
const (
	PushCategoryNewFollower   = "new_follower"
	PushCategoryFollowRequest = "private_user_follow_request"
	PushCategoryDirectPending = "direct_v2_pending"
	PushCategoryLiveBroadcast = "live_broadcast"
)

// PushNotification is a decoded out-of-band push payload.
type PushNotification struct {
	Category     string            `json:"push_category"`
	SourceUserID int64             `json:"source_user_id"`
	ActionParams map[string]string `json:"action_params"`
	Message      string            `json:"message"`

	// Raw keeps the undecoded payload for verbatim passthrough events.
	Raw json.RawMessage `json:"-"`
}
