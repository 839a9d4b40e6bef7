package journal

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a ring buffer holding the most recent entries.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
	next    int
	size    int
	closed  bool
}

// NewMemoryStore creates a ring buffer holding up to capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryStore{entries: make([]*Entry, capacity)}
}

// Append stores a copy of e, evicting the oldest entry when full.
func (s *MemoryStore) Append(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.entries[s.next] = e.clone()
	s.next = (s.next + 1) % len(s.entries)
	if s.size < len(s.entries) {
		s.size++
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit of zero or
// less returns everything held.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	n := s.size
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]*Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx].clone())
	}
	return out, nil
}

// PruneBefore drops entries recorded before cutoff.
func (s *MemoryStore) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	// Rebuild oldest to newest so insertion order survives.
	kept := make([]*Entry, 0, s.size)
	for i := s.size; i >= 1; i-- {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		if e := s.entries[idx]; !e.Time.Before(cutoff) {
			kept = append(kept, e)
		}
	}

	removed := int64(s.size - len(kept))
	clear(s.entries)
	copy(s.entries, kept)
	s.size = len(kept)
	s.next = len(kept) % len(s.entries)
	return removed, nil
}

// Len returns the number of entries held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Ping fails once the store is closed.
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close releases the buffer.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = make([]*Entry, len(s.entries))
	s.size = 0
	s.next = 0
	return nil
}
