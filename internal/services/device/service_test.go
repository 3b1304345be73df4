package device_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"sessiongate/internal/services/device"
	"sessiongate/internal/store"
)

func TestEnsureDeviceIdentity_CreatesOnce(t *testing.T) {
	svc := device.New(store.NewDeviceStore(store.NewMemorySlots()))

	if _, ok, err := svc.DeviceIdentity(); err != nil || ok {
		t.Fatalf("fresh store: ok=%v err=%v", ok, err)
	}

	first, err := svc.EnsureDeviceIdentity()
	if err != nil {
		t.Fatalf("EnsureDeviceIdentity: %v", err)
	}
	if _, err := uuid.Parse(first.ID.String()); err != nil {
		t.Fatalf("device id %q is not a uuid: %v", first.ID, err)
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not set")
	}

	second, err := svc.EnsureDeviceIdentity()
	if err != nil {
		t.Fatalf("EnsureDeviceIdentity again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("identity changed: %s -> %s", first.ID, second.ID)
	}
}

func TestResetDeviceIdentity(t *testing.T) {
	svc := device.New(store.NewDeviceStore(store.NewMemorySlots()))
	first, _ := svc.EnsureDeviceIdentity()

	reset, err := svc.ResetDeviceIdentity()
	if err != nil {
		t.Fatalf("ResetDeviceIdentity: %v", err)
	}
	if reset.ID == first.ID {
		t.Fatal("reset kept the old id")
	}
	got, ok, _ := svc.DeviceIdentity()
	if !ok || got.ID != reset.ID {
		t.Fatalf("stored = %+v", got)
	}
}

func TestEnsureDeviceIdentity_Concurrent(t *testing.T) {
	svc := device.New(store.NewDeviceStore(store.NewMemorySlots()))

	const n = 16
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := svc.EnsureDeviceIdentity()
			if err != nil {
				t.Errorf("EnsureDeviceIdentity: %v", err)
				return
			}
			ids <- id.ID.String()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Fatalf("concurrent callers saw %d identities", len(seen))
	}
}
