package tenure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/internal/election/store/conference"
	electionstore "github.com/polibase/polibase/internal/election/store/election"
	"github.com/polibase/polibase/internal/election/store/member"
	"github.com/polibase/polibase/internal/election/store/politician"
	"github.com/polibase/polibase/pkg/platform/sentinel"
)

// Input selects the election whose winners get seat tenures.
type Input struct {
	TermNumber      int
	GoverningBodyID int64
	ConferenceName  string
	DryRun          bool
}

// PopulatedMember is one derived tenure.
type PopulatedMember struct {
	PoliticianID   int64      `json:"politician_id"`
	PoliticianName string     `json:"politician_name"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	WasExisting    bool       `json:"was_existing"`
}

// Result reports the counters of one population run.
type Result struct {
	TotalElected        int               `json:"total_elected"`
	CreatedCount        int               `json:"created_count"`
	AlreadyExistedCount int               `json:"already_existed_count"`
	Errors              int               `json:"errors"`
	ErrorDetails        []string          `json:"error_details,omitempty"`
	PopulatedMembers    []PopulatedMember `json:"populated_members,omitempty"`
}

// Populator turns an election's winners into conference seat tenures,
// keyed for idempotency on (politician, conference, startDate).
type Populator struct {
	elections   electionstore.Store
	members     member.Store
	conferences conference.Store
	politicians politician.Store
	logger      *slog.Logger
}

func NewPopulator(
	elections electionstore.Store,
	members member.Store,
	conferences conference.Store,
	politicians politician.Store,
	logger *slog.Logger,
) *Populator {
	return &Populator{
		elections:   elections,
		members:     members,
		conferences: conferences,
		politicians: politicians,
		logger:      logger,
	}
}

type tenureKey struct {
	politicianID int64
	conferenceID int64
	startDate    time.Time
}

// Execute runs the population for one election term.
func (p *Populator) Execute(ctx context.Context, input Input) (*Result, error) {
	result := &Result{}

	election, err := p.elections.GetByGoverningBodyAndTerm(ctx, input.GoverningBodyID, input.TermNumber)
	if errors.Is(err, sentinel.ErrNotFound) {
		result.Errors = 1
		result.ErrorDetails = append(result.ErrorDetails,
			fmt.Sprintf("第%d回の選挙が見つかりません", input.TermNumber))
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get election term %d: %w", input.TermNumber, err)
	}

	all, err := p.members.ListByElection(ctx, election.ID)
	if err != nil {
		return nil, fmt.Errorf("list election members: %w", err)
	}
	var elected []*models.ElectionMember
	for _, m := range all {
		if m.IsElected() {
			elected = append(elected, m)
		}
	}
	result.TotalElected = len(elected)
	if len(elected) == 0 {
		p.logger.Info("no elected members", slog.Int("term", input.TermNumber))
		return result, nil
	}

	conf, err := p.conferences.GetByNameAndGoverningBody(ctx, input.ConferenceName, input.GoverningBodyID)
	if errors.Is(err, sentinel.ErrNotFound) {
		result.Errors = 1
		result.ErrorDetails = append(result.ErrorDetails,
			fmt.Sprintf("会議体'%s'が見つかりません", input.ConferenceName))
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conference %q: %w", input.ConferenceName, err)
	}

	allElections, err := p.elections.ListByGoverningBody(ctx, input.GoverningBodyID)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	var sameChamber []*models.Election
	for _, e := range allElections {
		if e.ElectionType == election.ElectionType {
			sameChamber = append(sameChamber, e)
		}
	}
	endDate := CalculateEndDate(election, sameChamber)

	ids := make([]int64, len(elected))
	for i, m := range elected {
		ids[i] = m.PoliticianID
	}
	politicians, err := p.politicians.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch politicians: %w", err)
	}
	nameByID := make(map[int64]string, len(politicians))
	for _, pol := range politicians {
		nameByID[pol.ID] = pol.Name
	}

	existingMembers, err := p.conferences.ListMembers(ctx, conf.ID)
	if err != nil {
		return nil, fmt.Errorf("list conference members: %w", err)
	}
	existing := make(map[tenureKey]bool, len(existingMembers))
	for _, m := range existingMembers {
		existing[tenureKey{m.PoliticianID, m.ConferenceID, m.StartDate}] = true
	}

	for _, m := range elected {
		name, ok := nameByID[m.PoliticianID]
		if !ok {
			name = fmt.Sprintf("ID:%d", m.PoliticianID)
		}

		key := tenureKey{m.PoliticianID, conf.ID, election.ElectionDate}
		wasExisting := existing[key]

		if wasExisting {
			result.AlreadyExistedCount++
		} else {
			if !input.DryRun {
				if err := p.conferences.UpsertMember(ctx, m.PoliticianID, conf.ID, election.ElectionDate, endDate); err != nil {
					result.Errors++
					result.ErrorDetails = append(result.ErrorDetails,
						fmt.Sprintf("在籍記録失敗: %s: %v", name, err))
					continue
				}
			}
			result.CreatedCount++
		}

		result.PopulatedMembers = append(result.PopulatedMembers, PopulatedMember{
			PoliticianID:   m.PoliticianID,
			PoliticianName: name,
			StartDate:      election.ElectionDate,
			EndDate:        endDate,
			WasExisting:    wasExisting,
		})
	}

	p.logger.Info("tenure population finished",
		slog.Int("elected", result.TotalElected),
		slog.Int("created", result.CreatedCount),
		slog.Int("already_existed", result.AlreadyExistedCount),
		slog.Int("errors", result.Errors))
	return result, nil
}
