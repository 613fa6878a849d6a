package numpad

import (
	"sync"

	"github.com/google/uuid"
)

// Store tracks the active session per device. Starting a session on a device
// cancels the one it replaces.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Start opens a session for device.
func (s *Store) Start(device string, cfg Config) *Session {
	session := NewSession(cfg)
	s.mu.Lock()
	prev := s.sessions[device]
	s.sessions[device] = session
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	return session
}

// Get returns the active session for device.
func (s *Store) Get(device string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[device]
	return session, ok
}

// End removes and cancels the active session of device if its ID is id. It
// reports whether it did; a session already replaced by a newer one is left
// to whoever replaced it. Cancelling a committed session is a no-op.
func (s *Store) End(device string, id uuid.UUID) bool {
	s.mu.Lock()
	session, ok := s.sessions[device]
	if !ok || session.ID() != id {
		s.mu.Unlock()
		return false
	}
	delete(s.sessions, device)
	s.mu.Unlock()

	session.Cancel()
	return true
}
