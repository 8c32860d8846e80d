// Package election persists Election records, unique per
// (governing body, term number).
package election

import (
	"context"

	"github.com/polibase/polibase/internal/election/models"
)

// Store is the election repository.
type Store interface {
	// GetByGoverningBodyAndTerm returns sentinel.ErrNotFound when the term
	// has no election yet.
	GetByGoverningBodyAndTerm(ctx context.Context, governingBodyID int64, termNumber int) (*models.Election, error)
	// ListByGoverningBody returns all elections of a body ordered by
	// election date ascending.
	ListByGoverningBody(ctx context.Context, governingBodyID int64) ([]*models.Election, error)
	Create(ctx context.Context, e *models.Election) (*models.Election, error)
}
