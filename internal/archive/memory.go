package archive

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memrepo keeps results in process memory; used when no DATABASE_URL is
// configured and in tests.
type memrepo struct {
	mu      sync.RWMutex
	results map[string]*Result
}

func NewMemoryRepository() Repository {
	return &memrepo{results: make(map[string]*Result)}
}

func (m *memrepo) SaveResult(_ context.Context, r *Result) error {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Moves = append(cp.Moves[:0:0], r.Moves...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.GameID] = &cp
	return nil
}

func (m *memrepo) Recent(_ context.Context, playerID string, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 10
	}
	playerID = strings.TrimSpace(playerID)

	m.mu.RLock()
	var out []*Result
	for _, r := range m.results {
		if r.FirstID == playerID || r.SecondID == playerID {
			cp := *r
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].EndedAt.Equal(out[j].EndedAt) {
			return out[i].GameID < out[j].GameID
		}
		return out[i].EndedAt.After(out[j].EndedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
