// Package importer holds the reconciliation pipelines that turn external
// election feeds into persisted elections and members. Each pipeline run
// is idempotent: it resets the rows it owns before re-deriving them, so
// re-running against unchanged input changes no persisted counts.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/internal/election/service"
	"github.com/polibase/polibase/internal/election/source"
	"github.com/polibase/polibase/internal/election/store/member"
)

// GeneralInput selects one general election to import.
type GeneralInput struct {
	ElectionNumber  int
	GoverningBodyID int64
	DryRun          bool
}

// GeneralResult reports the counters of one constituency-pipeline run.
type GeneralResult struct {
	ElectionNumber     int      `json:"election_number"`
	ElectionID         int64    `json:"election_id,omitempty"`
	TotalCandidates    int      `json:"total_candidates"`
	MatchedPoliticians int      `json:"matched_politicians"`
	CreatedPoliticians int      `json:"created_politicians"`
	CreatedParties     int      `json:"created_parties"`
	SkippedAmbiguous   int      `json:"skipped_ambiguous"`
	SkippedDuplicate   int      `json:"skipped_duplicate"`
	MembersCreated     int      `json:"election_members_created"`
	Errors             int      `json:"errors"`
	ErrorDetails       []string `json:"error_details,omitempty"`
}

// General imports constituency results of one 衆議院 general election.
// Its idempotent reset deletes every member of the election before
// re-deriving all of them from the source.
type General struct {
	services *service.Factory
	members  member.Store
	source   source.ElectionSource
	logger   *slog.Logger
}

func NewGeneral(services *service.Factory, members member.Store, src source.ElectionSource, logger *slog.Logger) *General {
	return &General{services: services, members: members, source: src, logger: logger}
}

// Execute runs the pipeline. Only a source transport failure is returned
// as an error; empty feeds and per-candidate failures are folded into
// the result. The resolution service, and with it the party cache, is
// built fresh per run.
func (g *General) Execute(ctx context.Context, input GeneralInput) (*GeneralResult, error) {
	svc := g.services.New()
	result := &GeneralResult{ElectionNumber: input.ElectionNumber}

	info, candidates, err := g.source.FetchCandidates(ctx, input.ElectionNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates for election %d: %w", input.ElectionNumber, err)
	}
	if len(candidates) == 0 {
		g.logger.Error("no candidate data", slog.Int("election_number", input.ElectionNumber))
		result.Errors = 1
		result.ErrorDetails = append(result.ErrorDetails, "候補者データの取得に失敗")
		return result, nil
	}

	result.TotalCandidates = len(candidates)
	g.logger.Info("fetched candidates", slog.Int("count", len(candidates)))

	if input.DryRun {
		g.reportDryRun(candidates)
		return result, nil
	}

	election, _, err := svc.GetOrCreateElection(ctx,
		input.GoverningBodyID, input.ElectionNumber,
		electionDateOrNow(info), models.ElectionTypeGeneral)
	if err != nil {
		result.Errors = 1
		result.ErrorDetails = append(result.ErrorDetails, "Electionレコードの作成に失敗: "+err.Error())
		return result, nil
	}
	result.ElectionID = election.ID

	deleted, err := g.members.DeleteByElection(ctx, election.ID)
	if err != nil {
		return nil, fmt.Errorf("reset election members: %w", err)
	}
	if deleted > 0 {
		g.logger.Info("deleted existing election members", slog.Int("count", deleted))
	}

	processed := make(map[int64]bool)
	for _, c := range candidates {
		if err := g.processCandidate(ctx, svc, c, election, processed, result); err != nil {
			g.logger.Error("candidate processing failed",
				slog.String("name", c.Name), slog.String("error", err.Error()))
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, "候補者処理失敗: "+c.Name)
		}
	}

	g.logger.Info("general import finished",
		slog.Int("candidates", result.TotalCandidates),
		slog.Int("matched", result.MatchedPoliticians),
		slog.Int("created_politicians", result.CreatedPoliticians),
		slog.Int("created_parties", result.CreatedParties),
		slog.Int("skipped_ambiguous", result.SkippedAmbiguous),
		slog.Int("skipped_duplicate", result.SkippedDuplicate),
		slog.Int("members_created", result.MembersCreated),
		slog.Int("errors", result.Errors))
	return result, nil
}

func (g *General) processCandidate(ctx context.Context, svc *service.ImportService, c models.CandidateRecord, election *models.Election, processed map[int64]bool, result *GeneralResult) error {
	party, isNewParty, err := svc.ResolveParty(ctx, c.PartyName)
	if err != nil {
		return err
	}
	var partyID *int64
	if party != nil {
		partyID = &party.ID
	}
	if isNewParty {
		result.CreatedParties++
	}

	asOf := election.ElectionDate
	politician, status, err := svc.MatchPolitician(ctx, c.Name, partyID, &asOf)
	if err != nil {
		return err
	}

	switch status {
	case service.MatchAmbiguous:
		result.SkippedAmbiguous++
		g.logger.Warn("ambiguous name skipped",
			slog.String("name", c.Name), slog.String("district", c.DistrictName))
		return nil
	case service.MatchNotFound:
		politician = svc.CreatePolitician(ctx, c.Name, c.Prefecture, c.DistrictName, partyID, &asOf)
		if politician == nil {
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, "政治家作成失敗: "+c.Name)
			return nil
		}
		result.CreatedPoliticians++
	default:
		result.MatchedPoliticians++
	}

	if processed[politician.ID] {
		result.SkippedDuplicate++
		g.logger.Warn("duplicate politician skipped",
			slog.String("name", c.Name),
			slog.Int64("politician_id", politician.ID),
			slog.String("district", c.DistrictName))
		return nil
	}

	res := models.ResultLost
	if c.IsElected {
		res = models.ResultElected
	}
	m := &models.ElectionMember{
		ElectionID:   election.ID,
		PoliticianID: politician.ID,
		Result:       res,
		Votes:        positiveOrNil(c.TotalVotes),
		Rank:         positiveOrNil(c.Rank),
	}
	if _, err := g.members.Create(ctx, m); err != nil {
		return fmt.Errorf("create election member: %w", err)
	}
	processed[politician.ID] = true
	result.MembersCreated++
	return nil
}

func (g *General) reportDryRun(candidates []models.CandidateRecord) {
	districts := make(map[string]bool)
	parties := make(map[string]bool)
	elected := 0
	for _, c := range candidates {
		districts[c.DistrictName] = true
		if c.PartyName != "" {
			parties[c.PartyName] = true
		}
		if c.IsElected {
			elected++
		}
	}
	g.logger.Info("dry run report",
		slog.Int("districts", len(districts)),
		slog.Int("candidates", len(candidates)),
		slog.Int("elected", elected),
		slog.Int("parties", len(parties)))
}

func positiveOrNil(v int) *int {
	if v > 0 {
		return &v
	}
	return nil
}

// electionDate is a shared helper for pipelines that derive the match
// as-of date from source metadata.
func electionDateOrNow(info *models.ElectionInfo) time.Time {
	if info != nil && !info.ElectionDate.IsZero() {
		return info.ElectionDate
	}
	return time.Now()
}
