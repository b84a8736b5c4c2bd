package buffer

import (
	"context"
	"sync"
	"time"

	"github.com/locus-lab/project-locus/internal/domain"
)

// MemoryStore is an in-process Store used in tests and single-node
// setups without redis. A single mutex makes each call atomic.
type MemoryStore struct {
	mu      sync.Mutex
	lists   map[string][]domain.Sample // newest first
	seenSet map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lists:   make(map[string][]domain.Sample),
		seenSet: make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) HasSeenTimestamp(_ context.Context, userID string, ts time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seenSet[userID][seenMember(ts)]
	return ok, nil
}

func (s *MemoryStore) PushIfNew(_ context.Context, userID string, sample domain.Sample) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member := seenMember(sample.Timestamp)
	seen, ok := s.seenSet[userID]
	if !ok {
		seen = make(map[string]struct{})
		s.seenSet[userID] = seen
	}
	if _, dup := seen[member]; dup {
		return false, nil
	}
	seen[member] = struct{}{}
	s.lists[userID] = append([]domain.Sample{sample}, s.lists[userID]...)
	return true, nil
}

func (s *MemoryStore) OldestTimestamp(_ context.Context, userID string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[userID]
	if len(list) == 0 {
		return time.Time{}, false, nil
	}
	return list[len(list)-1].Timestamp, true, nil
}

func (s *MemoryStore) NewestTimestamp(_ context.Context, userID string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[userID]
	if len(list) == 0 {
		return time.Time{}, false, nil
	}
	return list[0].Timestamp, true, nil
}

func (s *MemoryStore) DrainAll(_ context.Context, userID string) ([]domain.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	samples := s.lists[userID]
	delete(s.lists, userID)
	delete(s.seenSet, userID)
	return samples, nil
}
