// Package source declares the external data feeds the reconciliation
// pipelines read from. Implementations live in subpackages (smri for
// the councillor roster feed, soumu for the scraped election sheets);
// mocks for the pipelines' tests are generated into source/mocks.
package source

//go:generate mockgen -source=source.go -destination=mocks/source.go -package=mocks

import (
	"context"

	"github.com/polibase/polibase/internal/election/models"
)

// CouncillorSource serves the current councillor roster.
type CouncillorSource interface {
	FetchCouncillors(ctx context.Context) ([]models.CouncillorRecord, error)
}

// ElectionSource serves per-constituency candidate results for one
// general election.
type ElectionSource interface {
	FetchCandidates(ctx context.Context, electionNumber int) (*models.ElectionInfo, []models.CandidateRecord, error)
}

// ProportionalSource serves proportional-block candidate results for
// one general election.
type ProportionalSource interface {
	FetchProportional(ctx context.Context, electionNumber int) (*models.ElectionInfo, []models.ProportionalCandidateRecord, error)
}
