package store

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"sessiongate/internal/util/memzero"
)

// FileSlots keeps each slot in its own JSON file under dir. When a secret is
// set, slot contents are sealed with scrypt + ChaCha20-Poly1305 before they
// touch the disk.
type FileSlots struct {
	dir    string
	secret string
	mu     sync.Mutex
}

// NewFileSlots returns plaintext file slots rooted at dir.
func NewFileSlots(dir string) *FileSlots {
	return &FileSlots{dir: dir}
}

// NewSealedFileSlots returns file slots rooted at dir whose contents are
// encrypted with a key derived from secret.
func NewSealedFileSlots(dir, secret string) *FileSlots {
	return &FileSlots{dir: dir, secret: secret}
}

// Load reads the slot named key into out.
func (s *FileSlots) Load(key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path(key))
	if err != nil {
		return false, err
	}
	if b == nil { // file didn't exist
		return false, nil
	}
	if s.secret != "" {
		if b, err = open(s.secret, key, b); err != nil {
			return false, err
		}
		defer memzero.Zero(b)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

// Store replaces the slot named key with v.
func (s *FileSlots) Store(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if s.secret != "" {
		N, r, p := scryptParamsDefault()
		plain := b
		b, err = seal(s.secret, key, plain, N, r, p)
		memzero.Zero(plain)
		if err != nil {
			return err
		}
	}
	return writeFile(s.path(key), b, 0o600)
}

// Delete empties the slot named key.
func (s *FileSlots) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return removeFile(s.path(key))
}

func (s *FileSlots) path(key string) string {
	if s.secret != "" {
		return filepath.Join(s.dir, key+".json.enc")
	}
	return filepath.Join(s.dir, key+".json")
}

// Compile-time assertion that FileSlots implements Slots.
var _ Slots = (*FileSlots)(nil)
