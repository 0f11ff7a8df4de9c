package view

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps one State per browser session. Sessions idle longer than the
// TTL are dropped on the next access.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

type session struct {
	state    *State
	lastSeen time.Time
}

// NewStore creates a store with the given idle TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Acquire returns the started State for id, creating a new session (with a
// fresh id) when id is empty or unknown. created reports whether the caller
// must hand the new id back to the browser.
func (s *Store) Acquire(id string) (sessionID string, state *State, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if sess, ok := s.sessions[id]; ok && id != "" {
		sess.lastSeen = now
		return id, sess.state, false
	}

	sessionID = uuid.New().String()
	state = New()
	state.Start()
	s.sessions[sessionID] = &session{state: state, lastSeen: now}
	return sessionID, state, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// pruneLocked drops idle sessions. Sessions with a request in flight are kept.
func (s *Store) pruneLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) <= s.ttl {
			continue
		}
		if sess.state.Snapshot().Phase == PhaseLoading {
			continue
		}
		delete(s.sessions, id)
	}
}
