package cache

import (
	"net/http"
	"sync"
	"time"
)

// entry is one cached response. Bodies are held fully in memory; the
// cache stores small API payloads and shell documents, never streams.
type entry struct {
	status   int
	header   http.Header
	body     []byte
	storedAt time.Time
}

// Store is the in-memory response store keyed by request URL. It is
// cleared on process restart by construction.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

func (s *Store) get(key string) (entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return e, ok
}

func (s *Store) put(key string, e entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = e
}
