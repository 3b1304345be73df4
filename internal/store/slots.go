package store

// Slots is the key-value contract every storage backend satisfies. Each key
// names one persisted slot holding a single value.
//
// Load reports ok=false, with a nil error, when the slot is empty.
type Slots interface {
	Load(key string, out any) (ok bool, err error)
	Store(key string, v any) error
	Delete(key string) error
}

// Slot keys used by the typed stores.
const (
	sessionSlot = "session"
	deviceSlot  = "device"
)
