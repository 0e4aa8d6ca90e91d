// Package tokens persists the access/refresh token pair between requests,
// the durable key-value storage of the admin console.
package tokens

import (
	"errors"
	"sync"
)

// Pair is the credential pair issued by /auth/token/.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ErrNoTokens is returned when the store holds no pair.
var ErrNoTokens = errors.New("no tokens stored")

type Store interface {
	// Pair returns the stored pair. A store with nothing saved returns the
	// zero Pair and no error; ErrNoTokens is reserved for stores that can
	// tell "never written" apart from "cleared".
	Pair() (Pair, error)
	Save(Pair) error
	Clear() error
}

// MemoryStore keeps the pair in process memory. Suitable for tests and
// short-lived CLI invocations.
type MemoryStore struct {
	mu   sync.RWMutex
	pair Pair
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Pair() (Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, nil
}

func (s *MemoryStore) Save(p Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = p
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	return nil
}
