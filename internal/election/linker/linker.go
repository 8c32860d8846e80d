// Package linker attaches elected politicians to parliamentary groups
// through their party affiliation at the election date.
package linker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/polibase/polibase/internal/election/models"
	electionstore "github.com/polibase/polibase/internal/election/store/election"
	"github.com/polibase/polibase/internal/election/store/group"
	"github.com/polibase/polibase/internal/election/store/member"
	"github.com/polibase/polibase/internal/election/store/partyhistory"
	"github.com/polibase/polibase/internal/election/store/politician"
	"github.com/polibase/polibase/pkg/platform/sentinel"
)

// Input selects the election whose winners are linked.
type Input struct {
	TermNumber      int
	GoverningBodyID int64
	DryRun          bool
}

// LinkedMember is one successful (or pre-existing) linkage.
type LinkedMember struct {
	PoliticianID   int64  `json:"politician_id"`
	PoliticianName string `json:"politician_name"`
	GroupID        int64  `json:"parliamentary_group_id"`
	GroupName      string `json:"parliamentary_group_name"`
	WasExisting    bool   `json:"was_existing"`
}

// SkippedMember is one winner the linker declined to place, with the
// reason.
type SkippedMember struct {
	PoliticianID   int64  `json:"politician_id"`
	PoliticianName string `json:"politician_name"`
	Reason         string `json:"reason"`
	PartyID        *int64 `json:"political_party_id,omitempty"`
}

// Result reports the counters and per-member detail of one linkage run.
type Result struct {
	TotalElected          int             `json:"total_elected"`
	LinkedCount           int             `json:"linked_count"`
	AlreadyExistedCount   int             `json:"already_existed_count"`
	SkippedNoParty        int             `json:"skipped_no_party"`
	SkippedNoGroup        int             `json:"skipped_no_group"`
	SkippedMultipleGroups int             `json:"skipped_multiple_groups"`
	Errors                int             `json:"errors"`
	ErrorDetails          []string        `json:"error_details,omitempty"`
	LinkedMembers         []LinkedMember  `json:"linked_members,omitempty"`
	SkippedMembers        []SkippedMember `json:"skipped_members,omitempty"`
}

// Linker resolves each winner's party affiliation as of the election
// date to exactly one active group. Anything else is a counted skip:
// a member with several candidate groups is never placed by guesswork.
type Linker struct {
	elections   electionstore.Store
	members     member.Store
	politicians politician.Store
	histories   partyhistory.Store
	groups      group.Store
	logger      *slog.Logger
}

func New(
	elections electionstore.Store,
	members member.Store,
	politicians politician.Store,
	histories partyhistory.Store,
	groups group.Store,
	logger *slog.Logger,
) *Linker {
	return &Linker{
		elections:   elections,
		members:     members,
		politicians: politicians,
		histories:   histories,
		groups:      groups,
		logger:      logger,
	}
}

type membershipKey struct {
	politicianID int64
	groupID      int64
	startDate    time.Time
}

// Execute runs the linkage for one election term.
func (l *Linker) Execute(ctx context.Context, input Input) (*Result, error) {
	result := &Result{}

	election, err := l.elections.GetByGoverningBodyAndTerm(ctx, input.GoverningBodyID, input.TermNumber)
	if errors.Is(err, sentinel.ErrNotFound) {
		result.Errors = 1
		result.ErrorDetails = append(result.ErrorDetails,
			fmt.Sprintf("第%d回の選挙が見つかりません", input.TermNumber))
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get election term %d: %w", input.TermNumber, err)
	}

	all, err := l.members.ListByElection(ctx, election.ID)
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
		l.logger.Info("no elected members", slog.Int("term", input.TermNumber))
		return result, nil
	}

	ids := make([]int64, len(elected))
	for i, m := range elected {
		ids[i] = m.PoliticianID
	}
	politicians, err := l.politicians.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch politicians: %w", err)
	}
	politicianByID := make(map[int64]*models.Politician, len(politicians))
	for _, p := range politicians {
		politicianByID[p.ID] = p
	}

	histories, err := l.histories.CurrentByPoliticians(ctx, ids, election.ElectionDate)
	if err != nil {
		return nil, fmt.Errorf("fetch affiliation histories: %w", err)
	}

	groups, err := l.groups.ListByGoverningBody(ctx, input.GoverningBodyID, true)
	if err != nil {
		return nil, fmt.Errorf("list parliamentary groups: %w", err)
	}
	partyToGroups := make(map[int64][]*models.ParliamentaryGroup)
	for _, g := range groups {
		if g.PartyID != nil {
			partyToGroups[*g.PartyID] = append(partyToGroups[*g.PartyID], g)
		}
	}

	existing := make(map[membershipKey]bool)
	for _, g := range groups {
		memberships, err := l.groups.ListActiveMembershipsByGroup(ctx, g.ID, election.ElectionDate)
		if err != nil {
			return nil, fmt.Errorf("list memberships of group %d: %w", g.ID, err)
		}
		for _, ms := range memberships {
			existing[membershipKey{ms.PoliticianID, ms.GroupID, ms.StartDate}] = true
		}
	}

	for _, m := range elected {
		l.processMember(ctx, m, election, politicianByID, histories, partyToGroups, existing, input.DryRun, result)
	}

	l.logger.Info("group linkage finished",
		slog.Int("elected", result.TotalElected),
		slog.Int("linked", result.LinkedCount),
		slog.Int("already_existed", result.AlreadyExistedCount),
		slog.Int("skipped_no_party", result.SkippedNoParty),
		slog.Int("skipped_no_group", result.SkippedNoGroup),
		slog.Int("skipped_multiple_groups", result.SkippedMultipleGroups),
		slog.Int("errors", result.Errors))
	return result, nil
}

func (l *Linker) processMember(
	ctx context.Context,
	m *models.ElectionMember,
	election *models.Election,
	politicianByID map[int64]*models.Politician,
	histories map[int64]*models.PartyMembershipHistory,
	partyToGroups map[int64][]*models.ParliamentaryGroup,
	existing map[membershipKey]bool,
	dryRun bool,
	result *Result,
) {
	politician := politicianByID[m.PoliticianID]
	if politician == nil {
		result.Errors++
		result.ErrorDetails = append(result.ErrorDetails,
			fmt.Sprintf("politician_id=%dが見つかりません", m.PoliticianID))
		return
	}

	history := histories[m.PoliticianID]
	if history == nil {
		result.SkippedNoParty++
		result.SkippedMembers = append(result.SkippedMembers, SkippedMember{
			PoliticianID:   m.PoliticianID,
			PoliticianName: politician.Name,
			Reason:         "政党所属履歴なし",
		})
		return
	}
	partyID := history.PartyID

	matching := partyToGroups[partyID]
	switch {
	case len(matching) == 0:
		result.SkippedNoGroup++
		result.SkippedMembers = append(result.SkippedMembers, SkippedMember{
			PoliticianID:   m.PoliticianID,
			PoliticianName: politician.Name,
			Reason:         "対応する会派なし",
			PartyID:        &partyID,
		})
		return
	case len(matching) > 1:
		names := make([]string, len(matching))
		for i, g := range matching {
			names[i] = g.Name
		}
		result.SkippedMultipleGroups++
		result.SkippedMembers = append(result.SkippedMembers, SkippedMember{
			PoliticianID:   m.PoliticianID,
			PoliticianName: politician.Name,
			Reason:         "複数会派: " + strings.Join(names, ", "),
			PartyID:        &partyID,
		})
		return
	}

	target := matching[0]
	key := membershipKey{m.PoliticianID, target.ID, election.ElectionDate}
	wasExisting := existing[key]

	if wasExisting {
		result.AlreadyExistedCount++
	} else {
		if !dryRun {
			if _, err := l.groups.CreateMembership(ctx, m.PoliticianID, target.ID, election.ElectionDate); err != nil {
				result.Errors++
				result.ErrorDetails = append(result.ErrorDetails,
					fmt.Sprintf("会派紐付け失敗: %s: %v", politician.Name, err))
				return
			}
		}
		result.LinkedCount++
	}

	result.LinkedMembers = append(result.LinkedMembers, LinkedMember{
		PoliticianID:   m.PoliticianID,
		PoliticianName: politician.Name,
		GroupID:        target.ID,
		GroupName:      target.Name,
		WasExisting:    wasExisting,
	})
}
