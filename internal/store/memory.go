package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation used by the REPL when history
// is disabled and by tests
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record stores a copy of entry
func (s *MemoryStore) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.prepare()
	stored := *entry
	s.entries = append(s.entries, &stored)
	return nil
}

// Get returns the entry with id
func (s *MemoryStore) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == id {
			found := *e
			return &found, nil
		}
	}
	return nil, notFound(id)
}

// List returns matching entries, newest first
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Entry
	for _, e := range s.entries {
		if filter.matches(e) {
			copied := *e
			result = append(result, &copied)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	if filter.Limit > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
		if len(result) > filter.Limit {
			result = result[:filter.Limit]
		}
	}
	return result, nil
}

// Stats returns totals per source and the covered time range
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{BySource: make(map[Source]int64)}
	for _, e := range s.entries {
		stats.Total++
		stats.BySource[e.Source]++
		if !e.OK {
			stats.Failed++
		}
		if stats.Oldest.IsZero() || e.Timestamp.Before(stats.Oldest) {
			stats.Oldest = e.Timestamp
		}
		if e.Timestamp.After(stats.Newest) {
			stats.Newest = e.Timestamp
		}
	}
	return stats, nil
}

// Prune removes entries older than the specified duration
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	kept := s.entries[:0]
	var deleted int64
	for _, e := range s.entries {
		if e.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
