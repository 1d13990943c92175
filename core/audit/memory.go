package audit

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in memory, for tests and lightweight setups.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Append stores the entry.
func (s *MemoryStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	return nil
}

// AppendBatch stores all entries under one lock acquisition.
func (s *MemoryStore) AppendBatch(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	s.entries = append(s.entries, entries...)
	s.mu.Unlock()
	return nil
}

// Query returns entries matching q in append order.
func (s *MemoryStore) Query(_ context.Context, q Query) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []Entry
	for _, e := range s.entries {
		if match(e, q) {
			res = append(res, e)
		}
	}
	return res, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
