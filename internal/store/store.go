// Package store holds the in-memory entity cache shared by the realtime
// engine and the resolution layer.
package store

import (
	"sync"

	"github.com/itxrex07/x/internal/models"
)

// Store caches users and chats by id. It is owned by the engine instance and
// passed by reference to every component that needs it; there is no ambient
// global cache.
//
// Entities are shared by reference: the maps are guarded by the mutex, the
// entities themselves are patched in place with last-write-wins semantics.
type Store struct {
	mu      sync.RWMutex
	users   map[int64]*models.User
	chats   map[string]*models.Chat
	pending map[string]*models.Chat
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:   make(map[int64]*models.User),
		chats:   make(map[string]*models.Chat),
		pending: make(map[string]*models.Chat),
	}
}

// User returns the cached user for the id.
func (s *Store) User(id int64) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// UpsertUser merges the user into the cache and returns the canonical
// instance. An already cached user is patched in place so holders of the
// reference observe the update.
func (s *Store) UpsertUser(u *models.User) *models.User {
	if u == nil || u.PK == 0 {
		return u
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[u.PK]; ok {
		existing.Merge(u)
		return existing
	}
	s.users[u.PK] = u
	return u
}

// Chat returns the cached chat for the thread id.
func (s *Store) Chat(threadID string) (*models.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[threadID]
	return c, ok
}

// PutChat inserts or replaces the chat for its thread id.
func (s *Store) PutChat(c *models.Chat) {
	if c == nil || c.ThreadID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[c.ThreadID] = c
	if c.Pending {
		s.pending[c.ThreadID] = c
	}
}

// GetOrCreateChat returns the cached chat, creating an empty one on first
// reference.
func (s *Store) GetOrCreateChat(threadID string) *models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chats[threadID]; ok {
		return c
	}
	c := models.NewChat(threadID)
	s.chats[threadID] = c
	return c
}

// PendingChat returns the chat if it is in the pending view.
func (s *Store) PendingChat(threadID string) (*models.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.pending[threadID]
	return c, ok
}

// MarkPending flags the chat pending and adds it to the pending view.
func (s *Store) MarkPending(c *models.Chat) {
	if c == nil || c.ThreadID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Pending = true
	s.chats[c.ThreadID] = c
	s.pending[c.ThreadID] = c
}

// ApprovePending clears the pending flag and removes the chat from the
// pending view. The chat itself stays cached.
func (s *Store) ApprovePending(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.pending[threadID]; ok {
		c.Pending = false
		delete(s.pending, threadID)
	}
}

// Counts reports cache sizes for inspection endpoints.
func (s *Store) Counts() (users, chats, pending int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), len(s.chats), len(s.pending)
}
