package store

import (
	"sync"

	"sessiongate/internal/domain"
)

// DeviceSlotStore persists the device identity in the "device" slot.
type DeviceSlotStore struct {
	slots Slots
	mu    sync.Mutex
}

// NewDeviceStore returns a DeviceSlotStore backed by slots.
func NewDeviceStore(slots Slots) *DeviceSlotStore {
	return &DeviceSlotStore{slots: slots}
}

// LoadDeviceIdentity returns the stored device identity, if any.
func (s *DeviceSlotStore) LoadDeviceIdentity() (domain.DeviceIdentity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id domain.DeviceIdentity
	ok, err := s.slots.Load(deviceSlot, &id)
	if err != nil {
		return domain.DeviceIdentity{}, false, err
	}
	if !ok || id.ID == "" {
		return domain.DeviceIdentity{}, false, nil
	}
	return id, true, nil
}

// SaveDeviceIdentity replaces the stored device identity.
func (s *DeviceSlotStore) SaveDeviceIdentity(id domain.DeviceIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.slots.Store(deviceSlot, id)
}

// ClearDeviceIdentity forgets the device identity.
func (s *DeviceSlotStore) ClearDeviceIdentity() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.slots.Delete(deviceSlot)
}

// Compile-time assertion that DeviceSlotStore implements domain.DeviceIdentityStore.
var _ domain.DeviceIdentityStore = (*DeviceSlotStore)(nil)
