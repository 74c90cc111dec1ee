package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/itxrex07/x/internal/archive"
	"github.com/itxrex07/x/internal/realtime"
	"github.com/itxrex07/x/internal/store"
)

// DebugHandler exposes read-only inspection endpoints over the engine state.
type DebugHandler struct {
	engine  *realtime.Engine
	store   *store.Store
	archive *archive.Archive
}

// NewDebugHandler builds a DebugHandler. The archive may be nil when the
// process runs without persistence.
func NewDebugHandler(engine *realtime.Engine, st *store.Store, arch *archive.Archive) *DebugHandler {
	return &DebugHandler{engine: engine, store: st, archive: arch}
}

// RegisterDebugRoutes wires the inspection endpoints behind the auth middleware.
func RegisterDebugRoutes(router *gin.Engine, auth gin.HandlerFunc, h *DebugHandler) {
	router.GET("/debug/state", auth, h.State)
	router.GET("/debug/threads/:thread_id/messages", auth, h.ThreadMessages)
}

// State reports the buffer state machine position and cache sizes.
func (h *DebugHandler) State(c *gin.Context) {
	users, chats, pending := h.store.Counts()
	c.JSON(http.StatusOK, gin.H{
		"state":         h.engine.State().String(),
		"buffer_depth":  h.engine.BufferDepth(),
		"users":         users,
		"chats":         chats,
		"pending_chats": pending,
	})
}

// ThreadMessages returns recently archived messages of a thread.
func (h *DebugHandler) ThreadMessages(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "archive not configured"})
		return
	}

	threadID := c.Param("thread_id")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	msgs, err := h.archive.Recent(c.Request.Context(), threadID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
