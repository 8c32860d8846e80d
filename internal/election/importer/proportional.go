package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/internal/election/service"
	"github.com/polibase/polibase/internal/election/source"
	"github.com/polibase/polibase/internal/election/store/member"
)

// ProportionalInput selects one general election's proportional blocks.
type ProportionalInput struct {
	ElectionNumber  int
	GoverningBodyID int64
	DryRun          bool
}

// ProportionalResult reports the counters of one proportional-pipeline run.
type ProportionalResult struct {
	ElectionNumber       int      `json:"election_number"`
	ElectionID           int64    `json:"election_id,omitempty"`
	TotalCandidates      int      `json:"total_candidates"`
	ElectedCandidates    int      `json:"elected_candidates"`
	ProportionalElected  int      `json:"proportional_elected"`
	ProportionalRevival  int      `json:"proportional_revival"`
	MatchedPoliticians   int      `json:"matched_politicians"`
	CreatedPoliticians   int      `json:"created_politicians"`
	CreatedParties       int      `json:"created_parties"`
	SkippedSMDWinner     int      `json:"skipped_smd_winner"`
	SkippedAmbiguous     int      `json:"skipped_ambiguous"`
	SkippedDuplicate     int      `json:"skipped_duplicate"`
	MembersCreated       int      `json:"election_members_created"`
	Errors               int      `json:"errors"`
	ErrorDetails         []string `json:"error_details,omitempty"`
}

// Proportional imports proportional-block winners of one general
// election. It owns only the 比例当選/比例復活 rows: the idempotent
// reset deletes exactly those, and a politician who already has a
// district row from the constituency pipeline gets that row updated in
// place rather than a second one.
type Proportional struct {
	services *service.Factory
	members  member.Store
	source   source.ProportionalSource
	logger   *slog.Logger
}

func NewProportional(services *service.Factory, members member.Store, src source.ProportionalSource, logger *slog.Logger) *Proportional {
	return &Proportional{services: services, members: members, source: src, logger: logger}
}

// Execute runs the pipeline. The resolution service, and with it the
// party cache, is built fresh per run.
func (p *Proportional) Execute(ctx context.Context, input ProportionalInput) (*ProportionalResult, error) {
	svc := p.services.New()
	result := &ProportionalResult{ElectionNumber: input.ElectionNumber}

	info, all, err := p.source.FetchProportional(ctx, input.ElectionNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch proportional candidates for election %d: %w", input.ElectionNumber, err)
	}
	if len(all) == 0 {
		p.logger.Error("no proportional candidate data", slog.Int("election_number", input.ElectionNumber))
		result.Errors = 1
		result.ErrorDetails = append(result.ErrorDetails, "比例代表候補者データの取得に失敗")
		return result, nil
	}

	var elected []models.ProportionalCandidateRecord
	for _, c := range all {
		if c.IsElected {
			elected = append(elected, c)
		}
	}
	result.TotalCandidates = len(all)
	result.ElectedCandidates = len(elected)
	p.logger.Info("fetched proportional candidates",
		slog.Int("total", len(all)), slog.Int("elected", len(elected)))

	if input.DryRun {
		p.reportDryRun(all, elected)
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

	deleted, err := p.members.DeleteByElectionAndResults(ctx, election.ID, models.ProportionalResults)
	if err != nil {
		return nil, fmt.Errorf("reset proportional members: %w", err)
	}
	if deleted > 0 {
		p.logger.Info("deleted existing proportional members", slog.Int("count", deleted))
	}

	// Surviving rows are the constituency pipeline's; index them so a
	// revival winner updates their district row instead of duplicating.
	existing, err := p.members.ListByElection(ctx, election.ID)
	if err != nil {
		return nil, fmt.Errorf("list election members: %w", err)
	}
	byPolitician := make(map[int64]*models.ElectionMember, len(existing))
	for _, m := range existing {
		byPolitician[m.PoliticianID] = m
	}

	processed := make(map[int64]bool)
	for _, c := range elected {
		if err := p.processCandidate(ctx, svc, c, election.ID, byPolitician, processed, result); err != nil {
			p.logger.Error("candidate processing failed",
				slog.String("name", c.Name), slog.String("error", err.Error()))
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, "候補者処理失敗: "+c.Name)
		}
	}

	p.logger.Info("proportional import finished",
		slog.Int("candidates", result.TotalCandidates),
		slog.Int("elected", result.ElectedCandidates),
		slog.Int("proportional_elected", result.ProportionalElected),
		slog.Int("proportional_revival", result.ProportionalRevival),
		slog.Int("matched", result.MatchedPoliticians),
		slog.Int("created_politicians", result.CreatedPoliticians),
		slog.Int("created_parties", result.CreatedParties),
		slog.Int("skipped_smd_winner", result.SkippedSMDWinner),
		slog.Int("skipped_ambiguous", result.SkippedAmbiguous),
		slog.Int("skipped_duplicate", result.SkippedDuplicate),
		slog.Int("members_created", result.MembersCreated),
		slog.Int("errors", result.Errors))
	return result, nil
}

func (p *Proportional) processCandidate(ctx context.Context, svc *service.ImportService, c models.ProportionalCandidateRecord, electionID int64, byPolitician map[int64]*models.ElectionMember, processed map[int64]bool, result *ProportionalResult) error {
	// District winners already have their row from the constituency
	// pipeline; no proportional record is needed.
	if c.SMDResult == models.SMDResultWon {
		result.SkippedSMDWinner++
		p.logger.Debug("district winner skipped",
			slog.String("name", c.Name), slog.String("block", c.BlockName))
		return nil
	}

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

	politician, status, err := svc.MatchPolitician(ctx, c.Name, partyID, nil)
	if err != nil {
		return err
	}

	switch status {
	case service.MatchAmbiguous:
		result.SkippedAmbiguous++
		p.logger.Warn("ambiguous name skipped",
			slog.String("name", c.Name), slog.String("block", c.BlockName))
		return nil
	case service.MatchNotFound:
		politician = svc.CreatePolitician(ctx, c.Name, "", c.BlockName, partyID, nil)
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
		p.logger.Warn("duplicate politician skipped",
			slog.String("name", c.Name),
			slog.Int64("politician_id", politician.ID),
			slog.String("block", c.BlockName))
		return nil
	}

	res := models.ResultProportional
	if c.SMDResult == models.SMDResultLost {
		res = models.ResultProportionalRevival
		result.ProportionalRevival++
	} else {
		result.ProportionalElected++
	}

	if existing := byPolitician[politician.ID]; existing != nil {
		existing.Result = res
		existing.Rank = positiveOrNil(c.ListOrder)
		if err := p.members.Update(ctx, existing); err != nil {
			return fmt.Errorf("update election member: %w", err)
		}
		p.logger.Debug("updated existing member",
			slog.String("name", c.Name), slog.String("result", res))
	} else {
		m := &models.ElectionMember{
			ElectionID:   electionID,
			PoliticianID: politician.ID,
			Result:       res,
			Rank:         positiveOrNil(c.ListOrder),
		}
		if _, err := p.members.Create(ctx, m); err != nil {
			return fmt.Errorf("create election member: %w", err)
		}
	}
	processed[politician.ID] = true
	result.MembersCreated++
	return nil
}

func (p *Proportional) reportDryRun(all, elected []models.ProportionalCandidateRecord) {
	blocks := make(map[string]bool)
	parties := make(map[string]bool)
	var smdWinners, revivals, pure int
	for _, c := range all {
		blocks[c.BlockName] = true
		if c.PartyName != "" {
			parties[c.PartyName] = true
		}
	}
	for _, c := range elected {
		switch c.SMDResult {
		case models.SMDResultWon:
			smdWinners++
		case models.SMDResultLost:
			revivals++
		default:
			pure++
		}
	}
	p.logger.Info("dry run report",
		slog.Int("blocks", len(blocks)),
		slog.Int("candidates", len(all)),
		slog.Int("elected", len(elected)),
		slog.Int("pure_proportional", pure),
		slog.Int("revivals", revivals),
		slog.Int("smd_winners", smdWinners),
		slog.Int("parties", len(parties)))
}
