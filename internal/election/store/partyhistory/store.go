// Package partyhistory persists PartyMembershipHistory intervals, the
// temporal record disambiguation and group linkage read from.
package partyhistory

import (
	"context"
	"time"

	"github.com/polibase/polibase/internal/election/models"
)

// Store is the affiliation-history repository.
type Store interface {
	// CurrentByPoliticians bulk-fetches, for each politician id, the
	// affiliation interval active at asOf (latest start date wins when
	// several qualify). Politicians with no active interval are absent
	// from the map.
	CurrentByPoliticians(ctx context.Context, politicianIDs []int64, asOf time.Time) (map[int64]*models.PartyMembershipHistory, error)
	// Create validates the temporal invariants before inserting: a new
	// open-ended interval conflicts with any existing open interval for
	// the politician, and intervals must not overlap.
	Create(ctx context.Context, h *models.PartyMembershipHistory) (*models.PartyMembershipHistory, error)
	// ListByPolitician returns all intervals ordered by start date.
	ListByPolitician(ctx context.Context, politicianID int64) ([]*models.PartyMembershipHistory, error)
}
