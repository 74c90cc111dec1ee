// Package events defines the engine's outbound event vocabulary and the
// in-process dispatcher application code subscribes to.
package events

import (
	"sync"

	"github.com/itxrex07/x/internal/models"
	"github.com/itxrex07/x/internal/observability"
)

// Name identifies an event emitted by the engine.
type Name string

const (
	MessageCreate    Name = "messageCreate"
	MessageDelete    Name = "messageDelete"
	LikeAdd          Name = "likeAdd"
	LikeRemove       Name = "likeRemove"
	ChatNameUpdate   Name = "chatNameUpdate"
	ChatUserAdd      Name = "chatUserAdd"
	ChatUserRemove   Name = "chatUserRemove"
	CallStart        Name = "callStart"
	CallEnd          Name = "callEnd"
	ChatAdminAdd     Name = "chatAdminAdd"
	ChatAdminRemove  Name = "chatAdminRemove"
	NewFollower      Name = "newFollower"
	FollowRequest    Name = "followRequest"
	PendingRequest   Name = "pendingRequest"
	LiveNotification Name = "liveNotification"
	Push             Name = "push"
	RawRealtime      Name = "rawRealtime"
	RawFBNS          Name = "rawFbns"
)

// AllNames lists every event the engine can emit.
var AllNames = []Name{
	MessageCreate, MessageDelete, LikeAdd, LikeRemove,
	ChatNameUpdate, ChatUserAdd, ChatUserRemove,
	CallStart, CallEnd, ChatAdminAdd, ChatAdminRemove,
	NewFollower, FollowRequest, PendingRequest,
	LiveNotification, Push, RawRealtime, RawFBNS,
}

// MessagePayload accompanies messageCreate and messageDelete.
type MessagePayload struct {
	Chat    *models.Chat
	Message *models.Message
}

// LikePayload accompanies likeAdd and likeRemove.
type LikePayload struct {
	User    *models.User
	Message *models.Message
}

// ChatNamePayload accompanies chatNameUpdate.
type ChatNamePayload struct {
	Chat    *models.Chat
	OldName string
	NewName string
}

// ChatUserPayload accompanies chatUserAdd, chatUserRemove, chatAdminAdd and
// chatAdminRemove.
type ChatUserPayload struct {
	Chat *models.Chat
	User *models.User
}

// ChatPayload accompanies callStart, callEnd and pendingRequest.
type ChatPayload struct {
	Chat *models.Chat
}

// UserPayload accompanies newFollower and followRequest.
type UserPayload struct {
	User *models.User
}

// PushPayload accompanies liveNotification, push and rawFbns.
type PushPayload struct {
	Notification *models.PushNotification
}

// RealtimePayload accompanies rawRealtime.
type RealtimePayload struct {
	Topic   string
	Payload []byte
}

// Handler consumes an emitted event. Handlers must not mutate the entities
// they receive; payloads share live cache objects with the engine.
type Handler func(payload any)

// Emitter dispatches named events to registered handlers synchronously, in
// registration order.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[Name][]Handler
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[Name][]Handler)}
}

// On registers a handler for the event name.
func (e *Emitter) On(name Name, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[name] = append(e.handlers[name], h)
}

// Emit delivers the payload to every handler registered for the name.
func (e *Emitter) Emit(name Name, payload any) {
	e.mu.RLock()
	handlers := e.handlers[name]
	e.mu.RUnlock()

	observability.IncEvent(string(name))
	for _, h := range handlers {
		h(payload)
	}
}
