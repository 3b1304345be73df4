package store

import (
	"encoding/json"
	"sync"
)

// MemorySlots holds slots in process memory. Values are kept in encoded form
// so callers never share mutable state with the store.
type MemorySlots struct {
	mu    sync.Mutex
	slots map[string][]byte
}

// NewMemorySlots returns an empty in-memory backend.
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: make(map[string][]byte)}
}

func (s *MemorySlots) Load(key string, out any) (bool, error) {
	s.mu.Lock()
	b, ok := s.slots[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemorySlots) Store(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.slots[key] = b
	s.mu.Unlock()
	return nil
}

func (s *MemorySlots) Delete(key string) error {
	s.mu.Lock()
	delete(s.slots, key)
	s.mu.Unlock()
	return nil
}

var _ Slots = (*MemorySlots)(nil)
