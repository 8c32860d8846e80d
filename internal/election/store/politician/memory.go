package politician

import (
	"context"
	"sync"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/pkg/platform/sentinel"
)

// MemoryStore is a mutex-guarded in-memory Store for tests and local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   []*models.Politician
	nextID int64

	// failNames aborts Create for matching names; lets tests exercise
	// per-item failure isolation.
	failNames map[string]bool
}

// NewMemory constructs an empty in-memory politician store.
func NewMemory() *MemoryStore {
	return &MemoryStore{nextID: 1, failNames: make(map[string]bool)}
}

// FailCreateFor makes Create return ErrUnavailable for the given name.
func (s *MemoryStore) FailCreateFor(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNames[name] = true
}

func (s *MemoryStore) SearchByName(ctx context.Context, name string) ([]*models.Politician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Politician
	for _, p := range s.rows {
		if p.Name == name {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetByIDs(ctx context.Context, ids []int64) ([]*models.Politician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*models.Politician
	for _, p := range s.rows {
		if want[p.ID] {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*models.Politician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.rows {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) Create(ctx context.Context, p *models.Politician) (*models.Politician, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNames[p.Name] {
		return nil, sentinel.ErrUnavailable
	}
	cp := *p
	cp.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, &cp)
	created := cp
	return &created, nil
}

func (s *MemoryStore) Update(ctx context.Context, p *models.Politician) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.rows {
		if row.ID == p.ID {
			cp := *p
			s.rows[i] = &cp
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// Count reports the number of stored politicians. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
