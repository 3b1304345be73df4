package store

import (
	"sync"

	"sessiongate/internal/domain"
)

// SessionSlotStore persists the current session in the "session" slot.
type SessionSlotStore struct {
	slots Slots
	mu    sync.Mutex
}

// NewSessionStore returns a SessionSlotStore backed by slots.
func NewSessionStore(slots Slots) *SessionSlotStore {
	return &SessionSlotStore{slots: slots}
}

// LoadSession returns the stored session and whether one is present. A slot
// holding an empty id counts as absent.
func (s *SessionSlotStore) LoadSession() (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var session domain.Session
	ok, err := s.slots.Load(sessionSlot, &session)
	if err != nil {
		return domain.Session{}, false, err
	}
	if !ok || session.ID == "" {
		return domain.Session{}, false, nil
	}
	return session, true, nil
}

// SaveSession replaces the stored session.
func (s *SessionSlotStore) SaveSession(session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.slots.Store(sessionSlot, session)
}

// ClearSession forgets the stored session.
func (s *SessionSlotStore) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.slots.Delete(sessionSlot)
}

// Compile-time assertion that SessionSlotStore implements domain.SessionStore.
var _ domain.SessionStore = (*SessionSlotStore)(nil)
