package coordinator

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopmesh/contract"
)

// Turn is one utterance in a conversation, from either side.
type Turn struct {
	Role    string
	Content string
	At      time.Time
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is a conversation owned by one user. History is ordered oldest
// first.
type Session struct {
	ID        string
	UserID    string
	History   []Turn
	CreatedAt time.Time
}

// SessionStore keeps sessions in memory, keyed by id. Safe for concurrent
// use. Sessions live for the process lifetime; there is no eviction.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore constructs an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create opens a new session for userID and returns its id.
func (s *SessionStore) Create(userID string) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return cloneSession(sess)
}

// Get returns a copy of the session so callers cannot mutate shared state.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %q", contract.ErrNotFound, id)
	}
	return cloneSession(sess), nil
}

// Append records a turn on the session.
func (s *SessionStore) Append(id, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: session %q", contract.ErrNotFound, id)
	}
	sess.History = append(sess.History, Turn{Role: role, Content: content, At: time.Now().UTC()})
	return nil
}

func cloneSession(sess *Session) *Session {
	out := &Session{
		ID:        sess.ID,
		UserID:    sess.UserID,
		CreatedAt: sess.CreatedAt,
	}
	out.History = append(out.History, sess.History...)
	return out
}
