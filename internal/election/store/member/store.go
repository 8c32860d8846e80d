// Package member persists ElectionMember rows and carries the delete
// operations the pipelines use for their idempotent resets.
package member

import (
	"context"

	"github.com/polibase/polibase/internal/election/models"
)

// Store is the election-member repository.
type Store interface {
	ListByElection(ctx context.Context, electionID int64) ([]*models.ElectionMember, error)
	Create(ctx context.Context, m *models.ElectionMember) (*models.ElectionMember, error)
	Update(ctx context.Context, m *models.ElectionMember) error
	// DeleteByElection removes every member of the election and returns
	// how many rows went away. The general pipeline re-derives all of them.
	DeleteByElection(ctx context.Context, electionID int64) (int, error)
	// DeleteByElectionAndResults removes only members whose result is in
	// results. The proportional pipeline resets its own rows while
	// preserving district rows written by the general pipeline.
	DeleteByElectionAndResults(ctx context.Context, electionID int64, results []string) (int, error)
}
