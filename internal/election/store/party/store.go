// Package party persists PoliticalParty records, the name-keyed entities
// created lazily by the party resolver.
package party

import (
	"context"

	"github.com/polibase/polibase/internal/election/models"
)

// Store is the party repository.
type Store interface {
	// GetByName returns sentinel.ErrNotFound when no party carries the name.
	GetByName(ctx context.Context, name string) (*models.PoliticalParty, error)
	Create(ctx context.Context, p *models.PoliticalParty) (*models.PoliticalParty, error)
}
