// Package store provides persistence for the client's session and device
// identity.
//
// Each piece of state lives in one named slot of a pluggable backend:
//   - MemorySlots keeps slots in process memory (tests, throwaway runs).
//   - FileSlots writes one JSON file per slot under the configured home
//     directory, atomically via temp file + rename. With a secret, slot
//     contents are sealed with scrypt + ChaCha20-Poly1305.
//   - SQLiteSlots stores CBOR-encoded rows in a single kv table.
//
// The typed stores on top (SessionSlotStore, DeviceSlotStore) serialise
// access with their own mutex, so concurrent flows never interleave a
// load-modify-store on the same slot.
package store
