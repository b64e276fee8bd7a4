package report

import (
	"context"
	"sync"

	"github.com/kilianp07/depot/core/model"
)

// MemoryStore keeps summaries in memory. Used for tests and for the
// interactive shell when no backend is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data []model.DaySummary
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, sum model.DaySummary) error {
	s.mu.Lock()
	s.data = append(s.data, sum)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]model.DaySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.DaySummary
	for _, sum := range s.data {
		if q.Match(sum) {
			res = append(res, sum)
		}
	}
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }
