package tokens

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// FileStore seals the token pair into a single file with ChaCha20-Poly1305.
// Tokens at rest on disk are the desktop analog of browser localStorage, so
// they are encrypted rather than written in the clear.
type FileStore struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// NewFileStore creates a store writing to path. The key must be
// chacha20poly1305.KeySize (32) bytes.
func NewFileStore(path string, key []byte) (*FileStore, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &FileStore{path: path, key: key}, nil
}

func (s *FileStore) Pair() (Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Pair{}, nil
		}
		return Pair{}, err
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return Pair{}, err
	}
	if len(blob) < aead.NonceSize() {
		return Pair{}, errors.New("token file truncated")
	}

	nonce, sealed := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return Pair{}, fmt.Errorf("decrypting token file: %w", err)
	}

	var p Pair
	if err := json.Unmarshal(plain, &p); err != nil {
		return Pair{}, err
	}
	return p, nil
}

func (s *FileStore) Save(p Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plain, err := json.Marshal(p)
	if err != nil {
		return err
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := aead.Seal(nonce, nonce, plain, nil)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, sealed, 0o600)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
