// Package realtime implements the reconciliation engine that turns raw patch
// batches and push notifications into cached entities and domain events.
package realtime

import (
	"context"
	"log"
	"sync"

	"github.com/itxrex07/x/internal/events"
	"github.com/itxrex07/x/internal/models"
	"github.com/itxrex07/x/internal/observability"
	"github.com/itxrex07/x/internal/store"
)

// Resolver fetches entities the cache has not seen yet. Implementations may
// hit the network; the engine never waits for them inline.
type Resolver interface {
	FetchUser(ctx context.Context, id int64) (*models.User, error)
	FetchChat(ctx context.Context, threadID string, force bool) (*models.Chat, error)
	ListPendingChats(ctx context.Context) ([]*models.Chat, error)
}

// MessageValidator decides whether a decoded message is worth a
// messageCreate event.
type MessageValidator func(*models.Message) bool

// ValidateMessage is the default validity predicate: non-system items with
// renderable text content.
func ValidateMessage(m *models.Message) bool {
	return m != nil && !m.IsSystem() && m.Text != ""
}

// AuditFunc records inputs the engine absorbed without effect. Absorption
// stays silent at the event boundary; the audit trail is the only place it
// shows up.
type AuditFunc func(reason, detail string)

// Option configures an Engine.
type Option func(*Engine)

// WithValidator replaces the default message validity predicate.
func WithValidator(v MessageValidator) Option {
	return func(e *Engine) { e.valid = v }
}

// WithAudit installs an audit hook for absorbed inputs.
func WithAudit(audit AuditFunc) Option {
	return func(e *Engine) { e.audit = audit }
}

// Engine receives raw inbound traffic, applies it to the entity cache and
// emits domain events when derived conditions are met.
//
// Entry points are meant to be called from a single feed goroutine.
// Cache-hit events emit synchronously in arrival order; events that need a
// resolution fetch emit from a spawned goroutine when the fetch resolves,
// with no ordering guarantee relative to other in-flight work. Entity
// mutation is serialized through applyMu, so a resolution callback and the
// feed goroutine never write the same cache object concurrently.
type Engine struct {
	store    *store.Store
	resolver Resolver
	emitter  *events.Emitter
	valid    MessageValidator
	audit    AuditFunc

	// applyMu guards mutation of cached entities. Resolution callbacks run
	// on fetch goroutines and patch the same chats the feed goroutine does.
	applyMu sync.Mutex

	buffer preReadyBuffer
}

// New constructs an engine around the injected store, resolver and emitter.
func New(st *store.Store, resolver Resolver, emitter *events.Emitter, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		resolver: resolver,
		emitter:  emitter,
		valid:    ValidateMessage,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleRealtime processes one frame from the push channel. Frames arriving
// before readiness are buffered for replay.
func (e *Engine) HandleRealtime(topic string, payload []byte) {
	payload = clone(payload)
	if e.buffer.enqueue(bufferEntry{kind: entryRealtime, topic: topic, payload: payload}) {
		return
	}
	e.processRealtime(topic, payload)
}

// HandlePush processes one decoded push delivery. Deliveries arriving before
// readiness are buffered for replay.
func (e *Engine) HandlePush(payload []byte) {
	payload = clone(payload)
	if e.buffer.enqueue(bufferEntry{kind: entryPush, payload: payload}) {
		return
	}
	e.processPush(payload)
}

// SetReady drains every buffered event in arrival order through the live
// paths, then switches the engine to live processing. The buffer is never
// used again unless ResetReadiness is called.
func (e *Engine) SetReady() {
	if !e.buffer.beginDrain() {
		return
	}
	log.Printf("engine ready, draining buffered events depth=%d", e.buffer.depth())
	for {
		entry, ok := e.buffer.next()
		if !ok {
			break
		}
		e.process(entry)
	}
}

// ResetReadiness returns the engine to the buffering state. Only an external
// collaborator that knows the session is being rebuilt should call this.
func (e *Engine) ResetReadiness() {
	e.buffer.reset()
}

// State reports the buffer state machine position.
func (e *Engine) State() State {
	return e.buffer.current()
}

// BufferDepth reports how many raw events are queued before readiness.
func (e *Engine) BufferDepth() int {
	return e.buffer.depth()
}

func (e *Engine) process(entry bufferEntry) {
	switch entry.kind {
	case entryRealtime:
		e.processRealtime(entry.topic, entry.payload)
	case entryPush:
		e.processPush(entry.payload)
	}
}

func (e *Engine) processRealtime(topic string, payload []byte) {
	e.emitter.Emit(events.RawRealtime, events.RealtimePayload{Topic: topic, Payload: payload})
	if topic != MessageSyncTopic {
		return
	}
	batch, err := decodeSyncBatch(payload)
	if err != nil {
		e.auditDrop("malformed_sync_batch", err)
		return
	}
	for _, ev := range batch {
		for _, op := range ev.Data {
			e.applyOp(op)
		}
	}
}

// resolveUser runs fn with the user for the id: synchronously on a cache
// hit, from a goroutine once the fetch resolves otherwise. A failed fetch
// means fn never runs; the derived event is simply never emitted.
func (e *Engine) resolveUser(id int64, fn func(*models.User)) {
	if u, ok := e.store.User(id); ok {
		observability.IncResolverFetch("user", "cache")
		fn(u)
		return
	}
	go func() {
		u, err := e.resolver.FetchUser(context.Background(), id)
		if err != nil {
			observability.IncResolverFetch("user", "error")
			e.auditDrop("user_fetch_failed", err)
			return
		}
		observability.IncResolverFetch("user", "ok")
		fn(e.store.UpsertUser(u))
	}()
}

// resolveChat mirrors resolveUser for chats.
func (e *Engine) resolveChat(threadID string, fn func(*models.Chat)) {
	if c, ok := e.store.Chat(threadID); ok {
		observability.IncResolverFetch("chat", "cache")
		fn(c)
		return
	}
	go func() {
		c, err := e.resolver.FetchChat(context.Background(), threadID, false)
		if err != nil {
			observability.IncResolverFetch("chat", "error")
			e.auditDrop("chat_fetch_failed", err)
			return
		}
		observability.IncResolverFetch("chat", "ok")
		e.store.PutChat(c)
		fn(c)
	}()
}

func (e *Engine) auditDrop(reason string, err error) {
	if e.audit == nil {
		return
	}
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	e.audit(reason, detail)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
