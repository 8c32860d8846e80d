package conference

import (
	"context"
	"sync"
	"time"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/pkg/platform/sentinel"
)

// MemoryStore is an in-memory Store for unit tests.
type MemoryStore struct {
	mu          sync.RWMutex
	conferences map[int64]*models.Conference
	members     map[int64]*models.ConferenceMember
	nextConfID  int64
	nextMemID   int64
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		conferences: make(map[int64]*models.Conference),
		members:     make(map[int64]*models.ConferenceMember),
		nextConfID:  1,
		nextMemID:   1,
	}
}

func (s *MemoryStore) GetByNameAndGoverningBody(_ context.Context, name string, governingBodyID int64) (*models.Conference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.conferences {
		if c.Name == name && c.GoverningBodyID == governingBodyID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) CreateConference(_ context.Context, c *models.Conference) (*models.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	cp.ID = s.nextConfID
	s.nextConfID++
	s.conferences[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (s *MemoryStore) ListMembers(_ context.Context, conferenceID int64) ([]*models.ConferenceMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.ConferenceMember
	for _, m := range s.members {
		if m.ConferenceID == conferenceID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpsertMember(_ context.Context, politicianID, conferenceID int64, startDate time.Time, endDate *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if m.PoliticianID == politicianID && m.ConferenceID == conferenceID && m.StartDate.Equal(startDate) {
			return nil
		}
	}

	m := &models.ConferenceMember{
		ID:           s.nextMemID,
		PoliticianID: politicianID,
		ConferenceID: conferenceID,
		StartDate:    startDate,
		EndDate:      endDate,
	}
	s.nextMemID++
	s.members[m.ID] = m
	return nil
}

// MemberCount reports total stored tenures, for idempotency assertions.
func (s *MemoryStore) MemberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}
