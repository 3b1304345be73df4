package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sessiongate/internal/domain"
	"sessiongate/internal/store"
)

func backends(t *testing.T) map[string]store.Slots {
	t.Helper()
	sqlite, err := store.OpenSQLiteSlots(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]store.Slots{
		"memory": store.NewMemorySlots(),
		"file":   store.NewFileSlots(t.TempDir()),
		"sealed": store.NewSealedFileSlots(t.TempDir(), "correct horse"),
		"sqlite": sqlite,
	}
}

func TestSessionStore_SaveLoadClear(t *testing.T) {
	for name, slots := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var sessions domain.SessionStore = store.NewSessionStore(slots)

			if _, ok, err := sessions.LoadSession(); err != nil || ok {
				t.Fatalf("empty store: ok=%v err=%v", ok, err)
			}

			created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			if err := sessions.SaveSession(domain.Session{ID: "S1", CreatedAt: created}); err != nil {
				t.Fatalf("save session: %v", err)
			}
			got, ok, err := sessions.LoadSession()
			if err != nil || !ok {
				t.Fatalf("load session: ok=%v err=%v", ok, err)
			}
			if got.ID != "S1" || !got.CreatedAt.Equal(created) {
				t.Fatalf("mismatch after load: %+v", got)
			}

			if err := sessions.ClearSession(); err != nil {
				t.Fatalf("clear session: %v", err)
			}
			if _, ok, err := sessions.LoadSession(); err != nil || ok {
				t.Fatalf("after clear: ok=%v err=%v", ok, err)
			}
			// Clearing an empty slot is not an error.
			if err := sessions.ClearSession(); err != nil {
				t.Fatalf("second clear: %v", err)
			}
		})
	}
}

func TestDeviceStore_SurvivesSessionClear(t *testing.T) {
	for name, slots := range backends(t) {
		t.Run(name, func(t *testing.T) {
			sessions := store.NewSessionStore(slots)
			devices := store.NewDeviceStore(slots)

			if err := devices.SaveDeviceIdentity(domain.DeviceIdentity{ID: "dev-1"}); err != nil {
				t.Fatalf("save device: %v", err)
			}
			if err := sessions.SaveSession(domain.Session{ID: "S1"}); err != nil {
				t.Fatalf("save session: %v", err)
			}
			if err := sessions.ClearSession(); err != nil {
				t.Fatalf("clear session: %v", err)
			}

			id, ok, err := devices.LoadDeviceIdentity()
			if err != nil || !ok {
				t.Fatalf("load device: ok=%v err=%v", ok, err)
			}
			if id.ID != "dev-1" {
				t.Fatalf("want dev-1, got %q", id.ID)
			}
		})
	}
}

func TestSessionStore_EmptyIDIsAbsent(t *testing.T) {
	sessions := store.NewSessionStore(store.NewMemorySlots())
	if err := sessions.SaveSession(domain.Session{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok, err := sessions.LoadSession(); err != nil || ok {
		t.Fatalf("empty id should read as absent: ok=%v err=%v", ok, err)
	}
}

func TestSealedFileSlots_WrongSecret_Fails(t *testing.T) {
	home := t.TempDir()
	good := store.NewDeviceStore(store.NewSealedFileSlots(home, "correct"))
	if err := good.SaveDeviceIdentity(domain.DeviceIdentity{ID: "dev-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	bad := store.NewDeviceStore(store.NewSealedFileSlots(home, "wrong"))
	if _, _, err := bad.LoadDeviceIdentity(); err == nil {
		t.Fatal("expected error with wrong secret")
	}
}

func TestSealedFileSlots_NoPlaintextOnDisk(t *testing.T) {
	home := t.TempDir()
	devices := store.NewDeviceStore(store.NewSealedFileSlots(home, "secret"))
	if err := devices.SaveDeviceIdentity(domain.DeviceIdentity{ID: "dev-plaintext-marker"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(home, "device.json.enc"))
	if err != nil {
		t.Fatalf("read sealed file: %v", err)
	}
	if strings.Contains(string(raw), "dev-plaintext-marker") {
		t.Fatal("device id leaked to disk in plaintext")
	}
}

func TestFileSlots_FileMode(t *testing.T) {
	home := t.TempDir()
	sessions := store.NewSessionStore(store.NewFileSlots(home))
	if err := sessions.SaveSession(domain.Session{ID: "S1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(filepath.Join(home, "session.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("want 0600, got %o", perm)
	}
}

func TestSQLiteSlots_PersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	first, err := store.OpenSQLiteSlots(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.NewSessionStore(first).SaveSession(domain.Session{ID: "S-durable"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := store.OpenSQLiteSlots(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	got, ok, err := store.NewSessionStore(second).LoadSession()
	if err != nil || !ok || got.ID != "S-durable" {
		t.Fatalf("after reopen: %+v ok=%v err=%v", got, ok, err)
	}
}
