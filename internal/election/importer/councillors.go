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

// councillorsElectionYears maps 参議院通常選挙 term numbers to their
// election years. Elected years outside this table are skipped.
var councillorsElectionYears = map[int]int{
	26: 2022,
	25: 2019,
	24: 2016,
	23: 2013,
	22: 2010,
	21: 2007,
	20: 2004,
	19: 2001,
}

var yearToTerm = func() map[int]int {
	m := make(map[int]int, len(councillorsElectionYears))
	for term, year := range councillorsElectionYears {
		m[year] = term
	}
	return m
}()

// CouncillorsInput selects the target body for a roster import.
type CouncillorsInput struct {
	GoverningBodyID int64
	DryRun          bool
}

// CouncillorsResult reports the counters of one roster-pipeline run.
type CouncillorsResult struct {
	TotalCouncillors   int      `json:"total_councillors"`
	ElectionsCreated   int      `json:"elections_created"`
	MatchedPoliticians int      `json:"matched_politicians"`
	CreatedPoliticians int      `json:"created_politicians"`
	CreatedParties     int      `json:"created_parties"`
	SkippedAmbiguous   int      `json:"skipped_ambiguous"`
	SkippedDuplicate   int      `json:"skipped_duplicate"`
	MembersCreated     int      `json:"election_members_created"`
	Errors             int      `json:"errors"`
	ErrorDetails       []string `json:"error_details,omitempty"`
}

// Councillors imports the sitting 参議院 roster. One roster record fans
// out into an ElectionMember per mapped elected year, so elections are
// get-or-created per term and the duplicate guard is keyed per term.
type Councillors struct {
	services *service.Factory
	members  member.Store
	source   source.CouncillorSource
	logger   *slog.Logger
}

func NewCouncillors(services *service.Factory, members member.Store, src source.CouncillorSource, logger *slog.Logger) *Councillors {
	return &Councillors{services: services, members: members, source: src, logger: logger}
}

// Execute runs the pipeline. The resolution service, and with it the
// party cache, is built fresh per run.
func (c *Councillors) Execute(ctx context.Context, input CouncillorsInput) (*CouncillorsResult, error) {
	svc := c.services.New()
	result := &CouncillorsResult{}

	councillors, err := c.source.FetchCouncillors(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch councillors: %w", err)
	}
	if len(councillors) == 0 {
		c.logger.Error("no councillor data")
		result.Errors = 1
		result.ErrorDetails = append(result.ErrorDetails, "議員データの取得に失敗")
		return result, nil
	}

	result.TotalCouncillors = len(councillors)
	c.logger.Info("fetched councillors", slog.Int("count", len(councillors)))

	if input.DryRun {
		c.reportDryRun(councillors)
		return result, nil
	}

	// Members of a term are deleted once, on the run's first touch of
	// that term; the election cache doubles as the first-touch marker.
	elections := make(map[int]*models.Election)
	processed := make(map[int]map[int64]bool)

	for _, record := range councillors {
		if err := c.processCouncillor(ctx, svc, record, input.GoverningBodyID, elections, processed, result); err != nil {
			c.logger.Error("councillor processing failed",
				slog.String("name", record.Name), slog.String("error", err.Error()))
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, "議員処理失敗: "+record.Name)
		}
	}

	c.logger.Info("councillors import finished",
		slog.Int("councillors", result.TotalCouncillors),
		slog.Int("elections_created", result.ElectionsCreated),
		slog.Int("matched", result.MatchedPoliticians),
		slog.Int("created_politicians", result.CreatedPoliticians),
		slog.Int("created_parties", result.CreatedParties),
		slog.Int("skipped_ambiguous", result.SkippedAmbiguous),
		slog.Int("skipped_duplicate", result.SkippedDuplicate),
		slog.Int("members_created", result.MembersCreated),
		slog.Int("errors", result.Errors))
	return result, nil
}

func (c *Councillors) processCouncillor(ctx context.Context, svc *service.ImportService, record models.CouncillorRecord, governingBodyID int64, elections map[int]*models.Election, processed map[int]map[int64]bool, result *CouncillorsResult) error {
	party, isNewParty, err := svc.ResolveParty(ctx, record.PartyName)
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

	// The newest elected year anchors affiliation lookups, and the one
	// history row written for a newly created politician.
	var asOf *time.Time
	if year := latestYear(record.ElectedYears); year > 0 {
		d := sangiinElectionDate(year)
		asOf = &d
	}

	politician, status, err := svc.MatchPolitician(ctx, record.Name, partyID, asOf)
	if err != nil {
		return err
	}

	switch status {
	case service.MatchAmbiguous:
		result.SkippedAmbiguous++
		c.logger.Warn("ambiguous name skipped",
			slog.String("name", record.Name), slog.String("district", record.DistrictName))
		return nil
	case service.MatchNotFound:
		prefecture := record.DistrictName
		if record.IsProportional {
			prefecture = ""
		}
		politician = svc.CreatePolitician(ctx, record.Name, prefecture, record.DistrictName, partyID, asOf)
		if politician == nil {
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, "政治家作成失敗: "+record.Name)
			return nil
		}
		result.CreatedPoliticians++
	default:
		result.MatchedPoliticians++
	}

	for _, year := range record.ElectedYears {
		term, ok := yearToTerm[year]
		if !ok {
			c.logger.Debug("elected year outside term table",
				slog.Int("year", year), slog.String("name", record.Name))
			continue
		}

		election, err := c.electionForTerm(ctx, svc, term, year, governingBodyID, elections, result)
		if err != nil {
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails,
				fmt.Sprintf("Election作成失敗: 第%d回 (%s)", term, record.Name))
			continue
		}

		if processed[term] == nil {
			processed[term] = make(map[int64]bool)
		}
		if processed[term][politician.ID] {
			result.SkippedDuplicate++
			c.logger.Warn("duplicate within term skipped",
				slog.String("name", record.Name),
				slog.Int("term", term),
				slog.Int64("politician_id", politician.ID))
			continue
		}

		res := models.ResultElected
		if record.IsProportional {
			res = models.ResultProportional
		}
		m := &models.ElectionMember{
			ElectionID:   election.ID,
			PoliticianID: politician.ID,
			Result:       res,
		}
		if _, err := c.members.Create(ctx, m); err != nil {
			return fmt.Errorf("create election member: %w", err)
		}
		processed[term][politician.ID] = true
		result.MembersCreated++
	}
	return nil
}

// electionForTerm get-or-creates the term's election and, on the first
// touch within this run, deletes its existing members.
func (c *Councillors) electionForTerm(ctx context.Context, svc *service.ImportService, term, year int, governingBodyID int64, cache map[int]*models.Election, result *CouncillorsResult) (*models.Election, error) {
	if e, ok := cache[term]; ok {
		return e, nil
	}

	election, isNew, err := svc.GetOrCreateElection(ctx,
		governingBodyID, term, sangiinElectionDate(year), models.ElectionTypeCouncillors)
	if err != nil {
		return nil, err
	}

	deleted, err := c.members.DeleteByElection(ctx, election.ID)
	if err != nil {
		return nil, fmt.Errorf("reset election members: %w", err)
	}
	if deleted > 0 {
		c.logger.Info("deleted existing election members",
			slog.Int("term", term), slog.Int("count", deleted))
	}

	cache[term] = election
	if isNew {
		result.ElectionsCreated++
	}
	return election, nil
}

// sangiinElectionDate defaults to July 1st; 参議院通常選挙 are held in
// July and the roster feed carries only the year.
func sangiinElectionDate(year int) time.Time {
	return time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC)
}

func latestYear(years []int) int {
	latest := 0
	for _, y := range years {
		if y > latest {
			latest = y
		}
	}
	return latest
}

func (c *Councillors) reportDryRun(councillors []models.CouncillorRecord) {
	parties := make(map[string]bool)
	districts := make(map[string]bool)
	proportional := 0
	terms := make(map[int]bool)
	for _, r := range councillors {
		if r.PartyName != "" {
			parties[r.PartyName] = true
		}
		districts[r.DistrictName] = true
		if r.IsProportional {
			proportional++
		}
		for _, y := range r.ElectedYears {
			if term, ok := yearToTerm[y]; ok {
				terms[term] = true
			}
		}
	}
	c.logger.Info("dry run report",
		slog.Int("councillors", len(councillors)),
		slog.Int("constituency", len(councillors)-proportional),
		slog.Int("proportional", proportional),
		slog.Int("districts", len(districts)),
		slog.Int("terms", len(terms)),
		slog.Int("parties", len(parties)))
}
