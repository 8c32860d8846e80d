package member

import (
	"context"
	"slices"
	"sync"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/pkg/platform/sentinel"
)

// MemoryStore is a mutex-guarded in-memory Store.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   []*models.ElectionMember
	nextID int64
}

// NewMemory constructs an empty in-memory member store.
func NewMemory() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) ListByElection(ctx context.Context, electionID int64) ([]*models.ElectionMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ElectionMember
	for _, m := range s.rows {
		if m.ElectionID == electionID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, m *models.ElectionMember) (*models.ElectionMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.ElectionID == m.ElectionID && existing.PoliticianID == m.PoliticianID {
			return nil, sentinel.ErrConflict
		}
	}
	cp := *m
	cp.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, &cp)
	created := cp
	return &created, nil
}

func (s *MemoryStore) Update(ctx context.Context, m *models.ElectionMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.rows {
		if row.ID == m.ID {
			cp := *m
			s.rows[i] = &cp
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *MemoryStore) DeleteByElection(ctx context.Context, electionID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteWhere(func(m *models.ElectionMember) bool {
		return m.ElectionID == electionID
	}), nil
}

func (s *MemoryStore) DeleteByElectionAndResults(ctx context.Context, electionID int64, results []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteWhere(func(m *models.ElectionMember) bool {
		return m.ElectionID == electionID && slices.Contains(results, m.Result)
	}), nil
}

func (s *MemoryStore) deleteWhere(match func(*models.ElectionMember) bool) int {
	kept := s.rows[:0]
	deleted := 0
	for _, m := range s.rows {
		if match(m) {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	s.rows = kept
	return deleted
}

// Count reports the number of stored members. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
