package partyhistory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/pkg/platform/sentinel"
)

// MemoryStore is a mutex-guarded in-memory Store.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   []*models.PartyMembershipHistory
	nextID int64
}

// NewMemory constructs an empty in-memory history store.
func NewMemory() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) CurrentByPoliticians(ctx context.Context, politicianIDs []int64, asOf time.Time) (map[int64]*models.PartyMembershipHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[int64]bool, len(politicianIDs))
	for _, id := range politicianIDs {
		want[id] = true
	}
	out := make(map[int64]*models.PartyMembershipHistory)
	for _, h := range s.rows {
		if !want[h.PoliticianID] || !h.ActiveAt(asOf) {
			continue
		}
		if cur, ok := out[h.PoliticianID]; ok && !h.StartDate.After(cur.StartDate) {
			continue
		}
		cp := *h
		out[h.PoliticianID] = &cp
	}
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, h *models.PartyMembershipHistory) (*models.PartyMembershipHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.PoliticianID != h.PoliticianID {
			continue
		}
		if existing.EndDate == nil && h.EndDate == nil {
			return nil, fmt.Errorf("politician %d already has an open membership: %w", h.PoliticianID, sentinel.ErrConflict)
		}
		if intervalsOverlap(existing.StartDate, existing.EndDate, h.StartDate, h.EndDate) {
			return nil, fmt.Errorf("membership overlaps existing interval for politician %d: %w", h.PoliticianID, sentinel.ErrConflict)
		}
	}
	cp := *h
	cp.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, &cp)
	created := cp
	return &created, nil
}

func (s *MemoryStore) ListByPolitician(ctx context.Context, politicianID int64) ([]*models.PartyMembershipHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.PartyMembershipHistory
	for _, h := range s.rows {
		if h.PoliticianID == politicianID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Count reports the number of stored intervals. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// intervalsOverlap treats a nil end as open-ended; boundaries are inclusive
// dates, so two intervals sharing a single day overlap.
func intervalsOverlap(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	if aEnd != nil && aEnd.Before(bStart) {
		return false
	}
	if bEnd != nil && bEnd.Before(aStart) {
		return false
	}
	return true
}
