// Package politician persists Politician identity records.
//
// Stores are interface-driven so the reconciliation pipelines stay testable
// against the in-memory implementation while production runs on PostgreSQL.
package politician

import (
	"context"

	"github.com/polibase/polibase/internal/election/models"
)

// Store is the politician repository consumed by the pipelines.
type Store interface {
	// SearchByName returns every politician whose stored (normalized) name
	// equals name. Callers normalize before searching.
	SearchByName(ctx context.Context, name string) ([]*models.Politician, error)
	// GetByIDs bulk-fetches politicians; missing ids are silently absent
	// from the result.
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Politician, error)
	GetByID(ctx context.Context, id int64) (*models.Politician, error)
	Create(ctx context.Context, p *models.Politician) (*models.Politician, error)
	Update(ctx context.Context, p *models.Politician) error
}
