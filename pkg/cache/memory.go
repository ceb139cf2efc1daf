package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is the in-process fallback backend. It caps the entry count
// and evicts the oldest 10% in insertion order on overflow.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	order      []string // insertion order, may hold deleted keys
	maxEntries int
	now        func() time.Time
}

// NewMemoryStore creates a store capped at maxEntries
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]*memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value for key, expiring it lazily
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if s.expired(entry) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores the value; NoExpiry keeps the key until deleted or evicted
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl != NoExpiry {
		expiresAt = s.now().Add(ttl)
	}

	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = &memoryEntry{value: value, expiresAt: expiresAt}

	if len(s.entries) > s.maxEntries {
		s.evictLocked()
	}
	return nil
}

// Delete removes the key
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Exists reports whether the key is present and unexpired
func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if s.expired(entry) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

// Clear drops every entry
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*memoryEntry)
	s.order = nil
	return nil
}

// Stats reports the live entry count
func (s *MemoryStore) Stats(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Type:      "memory",
		Connected: true,
		Keys:      int64(len(s.entries)),
	}
}

func (s *MemoryStore) expired(entry *memoryEntry) bool {
	return !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt)
}

// evictLocked drops the oldest 10% of live entries in insertion order.
// Callers hold the lock.
func (s *MemoryStore) evictLocked() {
	toRemove := len(s.entries) / 10
	if toRemove < 1 {
		toRemove = 1
	}

	kept := s.order[:0]
	removed := 0
	for _, key := range s.order {
		if _, live := s.entries[key]; !live {
			continue // already deleted, drop from order
		}
		if removed < toRemove {
			delete(s.entries, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	s.order = kept
}
