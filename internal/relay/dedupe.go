package relay

import (
	"sync"
	"time"
)

// DedupeStore provides interface for message deduplication
type DedupeStore interface {
	Exists(messageID string) bool
	Add(messageID string) error
}

// InMemoryDedupeStore remembers message ids for a fixed TTL.
type InMemoryDedupeStore struct {
	mu    sync.RWMutex
	store map[string]time.Time
	ttl   time.Duration
	done  chan struct{}
	once  sync.Once
}

func NewInMemoryDedupeStore(ttl time.Duration) *InMemoryDedupeStore {
	store := &InMemoryDedupeStore{
		store: make(map[string]time.Time),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go store.cleanup(time.Minute)
	return store
}

// Exists reports whether messageID was added and has not yet expired.
func (s *InMemoryDedupeStore) Exists(messageID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, exists := s.store[messageID]
	return exists && time.Now().Before(expiry)
}

func (s *InMemoryDedupeStore) Add(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[messageID] = time.Now().Add(s.ttl)
	return nil
}

// Close stops the background cleanup.
func (s *InMemoryDedupeStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *InMemoryDedupeStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evict(time.Now())
		}
	}
}

func (s *InMemoryDedupeStore) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, expiry := range s.store {
		if now.After(expiry) {
			delete(s.store, id)
		}
	}
}
