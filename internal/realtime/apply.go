package realtime

import (
	"encoding/json"

	"github.com/itxrex07/x/internal/events"
	"github.com/itxrex07/x/internal/models"
	"github.com/itxrex07/x/internal/observability"
)

// applyOp routes one decoded patch operation by path category and operation
// kind. Unmatched paths and unhandled combinations are absorbed with no
// mutation and no event.
func (e *Engine) applyOp(op patchOp) {
	match := MatchPath(op.Path)
	if match.Category == PathNone {
		e.auditDrop("unmatched_patch_path", nil)
		return
	}
	observability.IncPatch(match.Category.String(), op.Op)

	switch match.Category {
	case PathThread:
		switch op.Op {
		case OpReplace:
			e.applyThreadReplace(match.ThreadID, op.Value)
		case OpAdd:
			e.applyMessageAdd(match.ThreadID, op.Value)
		case OpRemove:
			e.applyMessageRemove(match.ThreadID, op.Value)
		}
	case PathMessage:
		if op.Op == OpReplace {
			e.applyMessageReplace(match.ThreadID, match.ItemID, op.Value)
		}
	case PathAdmin:
		switch op.Op {
		case OpAdd:
			e.applyAdminChange(match.ThreadID, match.UserID, true)
		case OpRemove:
			e.applyAdminChange(match.ThreadID, match.UserID, false)
		}
	}
}

// applyThreadReplace merges a full thread payload into the cached chat and
// emits the transitions the merge produced. A chat seen for the first time
// is inserted silently: first sight is not a transition.
func (e *Engine) applyThreadReplace(threadID, value string) {
	var p models.ThreadPayload
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		e.auditDrop("malformed_thread_payload", err)
		return
	}
	e.cacheEmbeddedUsers(p.Users)

	chat, ok := e.store.Chat(threadID)
	if !ok {
		e.store.PutChat(models.ChatFromPayload(threadID, &p))
		return
	}

	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	prevName := chat.Title
	prevIDs := append([]int64(nil), chat.UserIDs...)
	prevMembers := chat.MemberSet()
	prevInCall := chat.InCall()

	chat.ApplyPayload(&p)

	if prevName != chat.Title {
		e.emitter.Emit(events.ChatNameUpdate, events.ChatNamePayload{
			Chat:    chat,
			OldName: prevName,
			NewName: chat.Title,
		})
	}

	// Membership diffing surfaces the first detected delta only; a payload
	// that changes several members at once absorbs the rest into new state.
	if len(chat.UserIDs) > len(prevIDs) {
		for _, id := range chat.UserIDs {
			if _, ok := prevMembers[id]; !ok {
				e.resolveUser(id, func(u *models.User) {
					e.emitter.Emit(events.ChatUserAdd, events.ChatUserPayload{Chat: chat, User: u})
				})
				break
			}
		}
	} else if len(chat.UserIDs) < len(prevIDs) {
		current := chat.MemberSet()
		for _, id := range prevIDs {
			if _, ok := current[id]; !ok {
				e.resolveUser(id, func(u *models.User) {
					e.emitter.Emit(events.ChatUserRemove, events.ChatUserPayload{Chat: chat, User: u})
				})
				break
			}
		}
	}

	if !prevInCall && chat.InCall() {
		e.emitter.Emit(events.CallStart, events.ChatPayload{Chat: chat})
	} else if prevInCall && !chat.InCall() {
		e.emitter.Emit(events.CallEnd, events.ChatPayload{Chat: chat})
	}
}

// applyMessageAdd inserts a new message into its owning chat, fetching the
// chat first when it has never been seen.
func (e *Engine) applyMessageAdd(threadID, value string) {
	var p models.MessagePayload
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		e.auditDrop("malformed_message_payload", err)
		return
	}
	if models.IsSystemItemType(p.ItemType) {
		return
	}
	if p.ItemID == "" {
		e.auditDrop("message_without_item_id", nil)
		return
	}
	e.resolveChat(threadID, func(chat *models.Chat) {
		msg := models.MessageFromPayload(threadID, &p)
		e.applyMu.Lock()
		chat.Messages[msg.ItemID] = msg
		e.applyMu.Unlock()
		if e.valid(msg) {
			e.emitter.Emit(events.MessageCreate, events.MessagePayload{Chat: chat, Message: msg})
		}
	})
}

// applyMessageRemove drops a message from its chat, emitting the pre-removal
// entity. Removing an id that was never seen does nothing.
func (e *Engine) applyMessageRemove(threadID, value string) {
	itemID := decodeItemID(value)
	chat, ok := e.store.Chat(threadID)
	if !ok {
		return
	}
	e.applyMu.Lock()
	defer e.applyMu.Unlock()
	msg, ok := chat.Messages[itemID]
	if !ok {
		return
	}
	e.emitter.Emit(events.MessageDelete, events.MessagePayload{Chat: chat, Message: msg})
	delete(chat.Messages, itemID)
}

// applyMessageReplace merges a message payload and diffs the like list by
// user id membership. A message never seen locally is ignored: there is
// nothing to diff against.
func (e *Engine) applyMessageReplace(threadID, itemID, value string) {
	chat, ok := e.store.Chat(threadID)
	if !ok {
		return
	}
	e.applyMu.Lock()
	defer e.applyMu.Unlock()
	msg, ok := chat.Messages[itemID]
	if !ok {
		return
	}

	var p models.MessagePayload
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		e.auditDrop("malformed_message_payload", err)
		return
	}

	prevLikes := append([]models.Like(nil), msg.Likes...)
	prevSet := msg.LikeSet()

	msg.ApplyPayload(&p)
	current := msg.LikeSet()

	// Same single-delta limitation as membership diffing.
	for _, l := range prevLikes {
		if _, ok := current[l.SenderID]; !ok {
			e.resolveUser(l.SenderID, func(u *models.User) {
				e.emitter.Emit(events.LikeRemove, events.LikePayload{User: u, Message: msg})
			})
			break
		}
	}
	for _, l := range msg.Likes {
		if _, ok := prevSet[l.SenderID]; !ok {
			e.resolveUser(l.SenderID, func(u *models.User) {
				e.emitter.Emit(events.LikeAdd, events.LikePayload{User: u, Message: msg})
			})
			break
		}
	}
}

// applyAdminChange updates the chat's admin list and emits the matching
// event. Remove takes the user out of the list; add is idempotent.
func (e *Engine) applyAdminChange(threadID string, userID int64, added bool) {
	e.resolveChat(threadID, func(chat *models.Chat) {
		e.applyMu.Lock()
		if added {
			if !chat.IsAdmin(userID) {
				chat.AdminUserIDs = append(chat.AdminUserIDs, userID)
			}
		} else {
			kept := chat.AdminUserIDs[:0]
			for _, id := range chat.AdminUserIDs {
				if id != userID {
					kept = append(kept, id)
				}
			}
			chat.AdminUserIDs = kept
		}
		e.applyMu.Unlock()
		name := events.ChatAdminRemove
		if added {
			name = events.ChatAdminAdd
		}
		e.resolveUser(userID, func(u *models.User) {
			e.emitter.Emit(name, events.ChatUserPayload{Chat: chat, User: u})
		})
	})
}

func (e *Engine) cacheEmbeddedUsers(users []*models.User) {
	for _, u := range users {
		e.store.UpsertUser(u)
	}
}
