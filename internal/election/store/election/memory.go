package election

import (
	"context"
	"sort"
	"sync"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/pkg/platform/sentinel"
)

// MemoryStore is a mutex-guarded in-memory Store.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   []*models.Election
	nextID int64
}

// NewMemory constructs an empty in-memory election store.
func NewMemory() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) GetByGoverningBodyAndTerm(ctx context.Context, governingBodyID int64, termNumber int) (*models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.rows {
		if e.GoverningBodyID == governingBodyID && e.TermNumber == termNumber {
			cp := *e
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) ListByGoverningBody(ctx context.Context, governingBodyID int64) ([]*models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Election
	for _, e := range s.rows {
		if e.GoverningBodyID == governingBodyID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ElectionDate.Before(out[j].ElectionDate) })
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, e *models.Election) (*models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.GoverningBodyID == e.GoverningBodyID && existing.TermNumber == e.TermNumber {
			return nil, sentinel.ErrConflict
		}
	}
	cp := *e
	cp.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, &cp)
	created := cp
	return &created, nil
}
