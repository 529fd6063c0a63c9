// Package session keeps per-browser conversation state in memory.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/conversation"
)

// Defaults mirror a typical browser session.
const (
	DefaultTTL     = time.Hour
	DefaultCleanup = 10 * time.Minute
)

// Session holds the state of the three chat pages for one visitor.
// Callers hold Lock for the duration of a turn.
type Session struct {
	mu sync.Mutex

	ID       string
	Chat     *conversation.Conversation
	Search   []domain.Message
	Video    []domain.Message
	VideoURL string
}

// Lock serialises turns on the session.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Store is an expiring in-memory session map.
type Store struct {
	cache   *cache.Cache
	newChat func() *conversation.Conversation
}

// New creates a store. newChat seeds the chat conversation of new sessions.
// Non-positive durations fall back to the defaults.
func New(ttl, cleanup time.Duration, newChat func() *conversation.Conversation) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanup <= 0 {
		cleanup = DefaultCleanup
	}
	return &Store{cache: cache.New(ttl, cleanup), newChat: newChat}
}

// GetOrCreate returns the live session for id and refreshes its expiry.
// When id is empty, unknown or expired a new session is created under a
// freshly minted id; caller-supplied ids are never adopted.
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if x, found := s.cache.Get(id); found {
			sess := x.(*Session)
			s.cache.SetDefault(id, sess)
			return sess, false
		}
	}

	for {
		sess := &Session{ID: uuid.NewString(), Chat: s.newChat()}
		if err := s.cache.Add(sess.ID, sess, cache.DefaultExpiration); err == nil {
			return sess, true
		}
	}
}

// Get returns an existing session.
func (s *Store) Get(id string) (*Session, bool) {
	if x, found := s.cache.Get(id); found {
		return x.(*Session), true
	}
	return nil, false
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of stored sessions, including expired ones not yet purged.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
