package group

import (
	"context"
	"sync"
	"time"

	"github.com/polibase/polibase/internal/election/models"
)

// MemoryStore is a mutex-guarded in-memory Store.
type MemoryStore struct {
	mu           sync.RWMutex
	groups       []*models.ParliamentaryGroup
	memberships  []*models.ParliamentaryGroupMembership
	nextGroup    int64
	nextMembship int64
}

// NewMemory constructs an empty in-memory group store.
func NewMemory() *MemoryStore {
	return &MemoryStore{nextGroup: 1, nextMembship: 1}
}

func (s *MemoryStore) ListByGoverningBody(ctx context.Context, governingBodyID int64, activeOnly bool) ([]*models.ParliamentaryGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ParliamentaryGroup
	for _, g := range s.groups {
		if g.GoverningBodyID != governingBodyID {
			continue
		}
		if activeOnly && !g.IsActive {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) CreateGroup(ctx context.Context, g *models.ParliamentaryGroup) (*models.ParliamentaryGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *g
	cp.ID = s.nextGroup
	s.nextGroup++
	s.groups = append(s.groups, &cp)
	created := cp
	return &created, nil
}

func (s *MemoryStore) ListActiveMembershipsByGroup(ctx context.Context, groupID int64, asOf time.Time) ([]*models.ParliamentaryGroupMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ParliamentaryGroupMembership
	for _, m := range s.memberships {
		if m.GroupID != groupID {
			continue
		}
		if asOf.Before(m.StartDate) {
			continue
		}
		if m.EndDate != nil && asOf.After(*m.EndDate) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) CreateMembership(ctx context.Context, politicianID, groupID int64, startDate time.Time) (*models.ParliamentaryGroupMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &models.ParliamentaryGroupMembership{
		ID:           s.nextMembship,
		PoliticianID: politicianID,
		GroupID:      groupID,
		StartDate:    startDate,
	}
	s.nextMembship++
	s.memberships = append(s.memberships, m)
	cp := *m
	return &cp, nil
}

// MembershipCount reports the number of stored memberships. Test helper.
func (s *MemoryStore) MembershipCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memberships)
}
