package realtime

import (
	"context"
	"encoding/json"

	"github.com/itxrex07/x/internal/events"
	"github.com/itxrex07/x/internal/models"
	"github.com/itxrex07/x/internal/observability"
)

// processPush routes a push delivery by category. Unknown categories and
// payload shapes the decoder cannot make sense of fall through to the
// catch-all push event; nothing here panics on malformed input.
func (e *Engine) processPush(raw []byte) {
	n := &models.PushNotification{Raw: raw}
	if err := json.Unmarshal(raw, n); err != nil {
		e.auditDrop("malformed_push_payload", err)
		n = &models.PushNotification{Raw: raw}
	}
	e.emitter.Emit(events.RawFBNS, events.PushPayload{Notification: n})

	switch n.Category {
	case models.PushCategoryNewFollower:
		e.emitUserPush(n, events.NewFollower)
	case models.PushCategoryFollowRequest:
		e.emitUserPush(n, events.FollowRequest)
	case models.PushCategoryDirectPending:
		e.handlePendingPush(n)
	case models.PushCategoryLiveBroadcast:
		e.emitter.Emit(events.LiveNotification, events.PushPayload{Notification: n})
	default:
		e.emitter.Emit(events.Push, events.PushPayload{Notification: n})
	}
}

func (e *Engine) emitUserPush(n *models.PushNotification, name events.Name) {
	if n.SourceUserID == 0 {
		e.emitter.Emit(events.Push, events.PushPayload{Notification: n})
		return
	}
	e.resolveUser(n.SourceUserID, func(u *models.User) {
		e.emitter.Emit(name, events.UserPayload{User: u})
	})
}

// handlePendingPush resolves a pending-thread push. A thread the pending
// view already knows emits immediately; otherwise the full pending list is
// refreshed through the resolver first.
func (e *Engine) handlePendingPush(n *models.PushNotification) {
	threadID := n.ActionParams["id"]
	if threadID == "" {
		e.emitter.Emit(events.Push, events.PushPayload{Notification: n})
		return
	}
	if chat, ok := e.store.PendingChat(threadID); ok {
		e.emitter.Emit(events.PendingRequest, events.ChatPayload{Chat: chat})
		return
	}
	go func() {
		chats, err := e.resolver.ListPendingChats(context.Background())
		if err != nil {
			observability.IncResolverFetch("pending", "error")
			e.auditDrop("pending_list_failed", err)
			return
		}
		observability.IncResolverFetch("pending", "ok")
		for _, c := range chats {
			e.store.MarkPending(c)
		}
		if chat, ok := e.store.PendingChat(threadID); ok {
			e.emitter.Emit(events.PendingRequest, events.ChatPayload{Chat: chat})
		}
	}()
}
