package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sessiongate/internal/domain"
)

// Service creates and rotates the device identity held by a store.
type Service struct {
	store domain.DeviceIdentityStore
	now   func() time.Time

	// mu makes EnsureDeviceIdentity's load-then-save atomic.
	mu sync.Mutex
}

// New returns a device service backed by the given store.
func New(s domain.DeviceIdentityStore) *Service {
	return &Service{store: s, now: time.Now}
}

// EnsureDeviceIdentity returns the stored identity, creating one if none
// exists yet.
func (s *Service) EnsureDeviceIdentity() (domain.DeviceIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok, err := s.store.LoadDeviceIdentity()
	if err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("load device identity: %w", err)
	}
	if ok && id.ID != "" {
		return id, nil
	}
	return s.generate()
}

// ResetDeviceIdentity replaces the stored identity with a new one.
func (s *Service) ResetDeviceIdentity() (domain.DeviceIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generate()
}

// DeviceIdentity returns the stored identity without creating one.
func (s *Service) DeviceIdentity() (domain.DeviceIdentity, bool, error) {
	id, ok, err := s.store.LoadDeviceIdentity()
	if err != nil || !ok || id.ID == "" {
		return domain.DeviceIdentity{}, false, err
	}
	return id, true, nil
}

func (s *Service) generate() (domain.DeviceIdentity, error) {
	raw, err := uuid.NewRandom()
	if err != nil {
		return domain.DeviceIdentity{}, err
	}
	id := domain.DeviceIdentity{
		ID:        domain.DeviceID(raw.String()),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SaveDeviceIdentity(id); err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("save device identity: %w", err)
	}
	return id, nil
}

// Compile-time assertion that Service implements domain.DeviceService.
var _ domain.DeviceService = (*Service)(nil)
