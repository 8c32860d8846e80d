package party

import (
	"context"
	"sync"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/pkg/platform/sentinel"
)

// MemoryStore is a mutex-guarded in-memory Store.
type MemoryStore struct {
	mu     sync.RWMutex
	byName map[string]*models.PoliticalParty
	nextID int64
}

// NewMemory constructs an empty in-memory party store.
func NewMemory() *MemoryStore {
	return &MemoryStore{byName: make(map[string]*models.PoliticalParty), nextID: 1}
}

func (s *MemoryStore) GetByName(ctx context.Context, name string) (*models.PoliticalParty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byName[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) Create(ctx context.Context, p *models.PoliticalParty) (*models.PoliticalParty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[p.Name]; ok {
		return nil, sentinel.ErrConflict
	}
	cp := *p
	cp.ID = s.nextID
	s.nextID++
	s.byName[cp.Name] = &cp
	created := cp
	return &created, nil
}

// Count reports the number of stored parties. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}
