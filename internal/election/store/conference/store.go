// Package conference persists legislative bodies and their seat-tenure
// records.
package conference

import (
	"context"
	"time"

	"github.com/polibase/polibase/internal/election/models"
)

// Store is the conference repository, covering conferences and their
// members; the tenure populator touches both together.
type Store interface {
	// GetByNameAndGoverningBody returns sentinel.ErrNotFound for unknown
	// conferences.
	GetByNameAndGoverningBody(ctx context.Context, name string, governingBodyID int64) (*models.Conference, error)
	CreateConference(ctx context.Context, c *models.Conference) (*models.Conference, error)
	ListMembers(ctx context.Context, conferenceID int64) ([]*models.ConferenceMember, error)
	// UpsertMember writes a tenure keyed on (politician, conference,
	// startDate); an existing key keeps its row (end dates are derived
	// deterministically, so rewriting would be a no-op).
	UpsertMember(ctx context.Context, politicianID, conferenceID int64, startDate time.Time, endDate *time.Time) error
}
