package realtime

import (
	"regexp"
	"strconv"
)

// PathCategory classifies a patch path into the closed set of shapes the
// engine understands.
type PathCategory int

const (
	// PathNone marks a path that matches no known shape. Operations on such
	// paths are ignored with no cache mutation and no event.
	PathNone PathCategory = iota
	// PathThread is a thread-level path carrying a thread or message value.
	PathThread
	// PathMessage is an item-level path carrying a message value.
	PathMessage
	// PathAdmin is an admin-list path naming a thread and a user.
	PathAdmin
)

func (c PathCategory) String() string {
	switch c {
	case PathThread:
		return "thread"
	case PathMessage:
		return "message"
	case PathAdmin:
		return "admin"
	default:
		return "none"
	}
}

// PathMatch is the result of classifying a patch path.
type PathMatch struct {
	Category PathCategory
	ThreadID string
	ItemID   string
	UserID   int64
}

var (
	threadPathRe  = regexp.MustCompile(`^/direct_v2(?:/inbox)?/threads/([^/]+)$`)
	messagePathRe = regexp.MustCompile(`^/direct_v2/threads/([^/]+)/items/([^/]+)$`)
	adminPathRe   = regexp.MustCompile(`^/direct_v2/threads/([^/]+)/admin_user_ids/(\d+)$`)
)

// MatchPath classifies a raw patch path and extracts the embedded ids.
// Matching is purely structural; the same matcher is shared by replace, add
// and remove operations.
func MatchPath(path string) PathMatch {
	if m := adminPathRe.FindStringSubmatch(path); m != nil {
		userID, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return PathMatch{Category: PathNone}
		}
		return PathMatch{Category: PathAdmin, ThreadID: m[1], UserID: userID}
	}
	if m := messagePathRe.FindStringSubmatch(path); m != nil {
		return PathMatch{Category: PathMessage, ThreadID: m[1], ItemID: m[2]}
	}
	if m := threadPathRe.FindStringSubmatch(path); m != nil {
		return PathMatch{Category: PathThread, ThreadID: m[1]}
	}
	return PathMatch{Category: PathNone}
}
