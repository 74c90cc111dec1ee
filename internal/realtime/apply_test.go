package realtime_test

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/itxrex07/x/internal/events"
	"github.com/itxrex07/x/internal/models"
	"github.com/itxrex07/x/internal/realtime"
)

func TestUnmatchedPathNoMutationNoEvent(t *testing.T) {
	engine, st, _, rec := newTestEngine(t, true)

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/broadcast/42/status", map[string]any{"status": "live"}),
	))

	require.Equal(t, []events.Name{events.RawRealtime}, rec.sequence())
	users, chats, pending := st.Counts()
	require.Zero(t, users+chats+pending)
}

func TestThreadReplaceFirstSightInsertsSilently(t *testing.T) {
	engine, st, _, rec := newTestEngine(t, true)

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/inbox/threads/t1", threadPayload("hello", "", 1, 2)),
	))

	chat, ok := st.Chat("t1")
	require.True(t, ok)
	require.Equal(t, "hello", chat.Title)
	require.Equal(t, []int64{1, 2}, chat.UserIDs)
	require.Equal(t, []events.Name{events.RawRealtime}, rec.sequence())
}

func TestThreadReplaceNameChange(t *testing.T) {
	engine, _, _, rec := newTestEngine(t, true)

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/inbox/threads/t1", threadPayload("old name", "", 1, 2)),
	))
	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/inbox/threads/t1", threadPayload("new name", "", 1, 2)),
	))

	require.Equal(t, 1, rec.count(events.ChatNameUpdate))
	payload := rec.last(events.ChatNameUpdate).(events.ChatNamePayload)
	require.Equal(t, "old name", payload.OldName)
	require.Equal(t, "new name", payload.NewName)

	require.Zero(t, rec.count(events.ChatUserAdd))
	require.Zero(t, rec.count(events.ChatUserRemove))
	require.Zero(t, rec.count(events.CallStart))
	require.Zero(t, rec.count(events.CallEnd))
}

func TestThreadReplaceMemberAdded(t *testing.T) {
	engine, _, _, rec := newTestEngine(t, true)

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/inbox/threads/t1", threadPayload("g", "", 1, 2)),
	))
	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/inbox/threads/t1", threadPayload("g", "", 1, 2, 3)),
	))

	// The joining user rides along in the payload, so resolution hits the
	// cache and the event is synchronous.
	require.Equal(t, 1, rec.count(events.ChatUserAdd))
	payload := rec.last(events.ChatUserAdd).(events.ChatUserPayload)
	require.Equal(t, int64(3), payload.User.PK)
	require.Zero(t, rec.count(events.ChatUserRemove))
}

func TestThreadReplaceMemberRemoved(t *testing.T) {
	engine, _, _, rec := newTestEngine(t, true)

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/inbox/threads/t1", threadPayload("g", "", 1, 2, 3)),
	))
	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/inbox/threads/t1", threadPayload("g", "", 1, 2)),
	))

	require.Equal(t, 1, rec.count(events.ChatUserRemove))
	payload := rec.last(events.ChatUserRemove).(events.ChatUserPayload)
	require.Equal(t, int64(3), payload.User.PK)
	require.Zero(t, rec.count(events.ChatUserAdd))
}

func TestThreadReplaceCallTransitions(t *testing.T) {
	engine, _, _, rec := newTestEngine(t, true)

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/inbox/threads/t1", threadPayload("g", "", 1, 2)),
	))
	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/inbox/threads/t1", threadPayload("g", "call-123", 1, 2)),
	))
	require.Equal(t, 1, rec.count(events.CallStart))
	require.Zero(t, rec.count(events.CallEnd))

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/inbox/threads/t1", threadPayload("g", "", 1, 2)),
	))
	require.Equal(t, 1, rec.count(events.CallStart))
	require.Equal(t, 1, rec.count(events.CallEnd))
}

func TestMessageAddSystemItemDiscarded(t *testing.T) {
	engine, st, _, rec := newTestEngine(t, true)
	st.PutChat(models.NewChat("t1"))

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "add", "/direct_v2/threads/t1", map[string]any{
			"item_id": "m1", "user_id": 2, "item_type": models.ItemTypeActionLog,
		}),
	))

	chat, _ := st.Chat("t1")
	require.Empty(t, chat.Messages)
	require.Zero(t, rec.count(events.MessageCreate))
}

func TestMessageAddValid(t *testing.T) {
	engine, st, _, rec := newTestEngine(t, true)
	st.PutChat(models.NewChat("t1"))

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "add", "/direct_v2/threads/t1", map[string]any{
			"item_id": "m1", "user_id": 2, "item_type": "text", "text": "hello there",
		}),
	))

	chat, _ := st.Chat("t1")
	require.Len(t, chat.Messages, 1)
	require.Equal(t, 1, rec.count(events.MessageCreate))
	payload := rec.last(events.MessageCreate).(events.MessagePayload)
	require.Equal(t, "m1", payload.Message.ItemID)
	require.Equal(t, "t1", payload.Message.ThreadID)
	require.Equal(t, int64(2), payload.Message.UserID)
}

func TestMessageAddFetchesUnknownChat(t *testing.T) {
	engine, st, resolver, rec := newTestEngine(t, true)
	fetched := models.NewChat("t9")
	resolver.On("FetchChat", mock.Anything, "t9", false).Return(fetched, nil).Once()

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "add", "/direct_v2/threads/t9", map[string]any{
			"item_id": "m1", "user_id": 2, "item_type": "text", "text": "hi",
		}),
	))

	eventually(t, func() bool { return rec.count(events.MessageCreate) == 1 }, "messageCreate after chat fetch")
	chat, ok := st.Chat("t9")
	require.True(t, ok)
	require.Len(t, chat.Messages, 1)
	resolver.AssertExpectations(t)
}

func TestMessageRemove(t *testing.T) {
	engine, st, _, rec := newTestEngine(t, true)
	chat := models.NewChat("t1")
	chat.Messages["m1"] = &models.Message{ItemID: "m1", ThreadID: "t1", UserID: 2, Text: "bye"}
	st.PutChat(chat)

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "remove", "/direct_v2/threads/t1", "m1"),
	))

	require.Equal(t, 1, rec.count(events.MessageDelete))
	payload := rec.last(events.MessageDelete).(events.MessagePayload)
	require.Equal(t, "m1", payload.Message.ItemID)
	require.Equal(t, "bye", payload.Message.Text)
	require.NotContains(t, chat.Messages, "m1")
}

func TestMessageRemoveAbsentIDEmitsNothing(t *testing.T) {
	engine, st, _, rec := newTestEngine(t, true)
	st.PutChat(models.NewChat("t1"))

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "remove", "/direct_v2/threads/t1", "never-seen"),
	))

	require.Zero(t, rec.count(events.MessageDelete))
}

func TestMessageReplaceLikeAdded(t *testing.T) {
	engine, st, _, rec := newTestEngine(t, true)
	chat := models.NewChat("t1")
	chat.Messages["m1"] = &models.Message{ItemID: "m1", ThreadID: "t1", UserID: 2, Text: "hi"}
	st.PutChat(chat)
	st.UpsertUser(&models.User{PK: 7, Username: "liker"})

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/threads/t1/items/m1", map[string]any{
			"item_id": "m1",
			"reactions": map[string]any{
				"likes": []map[string]any{{"sender_id": 7}},
			},
		}),
	))

	require.Equal(t, 1, rec.count(events.LikeAdd))
	payload := rec.last(events.LikeAdd).(events.LikePayload)
	require.Equal(t, int64(7), payload.User.PK)
	require.Equal(t, "m1", payload.Message.ItemID)
	require.Zero(t, rec.count(events.LikeRemove))
}

func TestMessageReplaceLikeRemoved(t *testing.T) {
	engine, st, _, rec := newTestEngine(t, true)
	chat := models.NewChat("t1")
	chat.Messages["m1"] = &models.Message{
		ItemID: "m1", ThreadID: "t1", UserID: 2, Text: "hi",
		Likes: []models.Like{{SenderID: 7}},
	}
	st.PutChat(chat)
	st.UpsertUser(&models.User{PK: 7, Username: "liker"})

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/threads/t1/items/m1", map[string]any{
			"item_id":   "m1",
			"reactions": map[string]any{"likes": []map[string]any{}},
		}),
	))

	require.Equal(t, 1, rec.count(events.LikeRemove))
	payload := rec.last(events.LikeRemove).(events.LikePayload)
	require.Equal(t, int64(7), payload.User.PK)
	require.Zero(t, rec.count(events.LikeAdd))
}

func TestMessageReplaceUnknownMessageIgnored(t *testing.T) {
	engine, st, _, rec := newTestEngine(t, true)
	st.PutChat(models.NewChat("t1"))

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "replace", "/direct_v2/threads/t1/items/never-seen", map[string]any{
			"item_id": "never-seen",
			"reactions": map[string]any{
				"likes": []map[string]any{{"sender_id": 7}},
			},
		}),
	))

	require.Zero(t, rec.count(events.LikeAdd))
	require.Zero(t, rec.count(events.LikeRemove))
}

func TestAdminAddAndRemove(t *testing.T) {
	engine, st, _, rec := newTestEngine(t, true)
	chat := models.NewChat("t1")
	chat.UserIDs = []int64{1, 2, 7}
	st.PutChat(chat)
	st.UpsertUser(&models.User{PK: 7, Username: "mod"})

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "add", "/direct_v2/threads/t1/admin_user_ids/7", map[string]any{}),
	))
	require.Equal(t, 1, rec.count(events.ChatAdminAdd))
	require.True(t, chat.IsAdmin(7))

	engine.HandleRealtime(realtime.MessageSyncTopic, syncBatch(t,
		patch(t, "remove", "/direct_v2/threads/t1/admin_user_ids/7", map[string]any{}),
	))
	require.Equal(t, 1, rec.count(events.ChatAdminRemove))
	require.False(t, chat.IsAdmin(7))

	payload := rec.last(events.ChatAdminRemove).(events.ChatUserPayload)
	require.Equal(t, int64(7), payload.User.PK)
}
