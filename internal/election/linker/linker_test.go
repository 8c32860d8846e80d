package linker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/polibase/polibase/internal/election/models"
	electionstore "github.com/polibase/polibase/internal/election/store/election"
	"github.com/polibase/polibase/internal/election/store/group"
	"github.com/polibase/polibase/internal/election/store/member"
	"github.com/polibase/polibase/internal/election/store/partyhistory"
	"github.com/polibase/polibase/internal/election/store/politician"
)

type LinkerSuite struct {
	suite.Suite

	politicians *politician.MemoryStore
	histories   *partyhistory.MemoryStore
	elections   *electionstore.MemoryStore
	members     *member.MemoryStore
	groups      *group.MemoryStore
	linker      *Linker

	election *models.Election
	ldp      *models.PoliticalParty
}

func (s *LinkerSuite) SetupTest() {
	s.politicians = politician.NewMemory()
	s.histories = partyhistory.NewMemory()
	s.elections = electionstore.NewMemory()
	s.members = member.NewMemory()
	s.groups = group.NewMemory()
	s.linker = New(s.elections, s.members, s.politicians, s.histories, s.groups, slog.Default())

	ctx := context.Background()
	var err error
	s.election, err = s.elections.Create(ctx, &models.Election{
		GoverningBodyID: 1,
		TermNumber:      49,
		ElectionDate:    time.Date(2021, 10, 31, 0, 0, 0, 0, time.UTC),
		ElectionType:    models.ElectionTypeGeneral,
	})
	s.Require().NoError(err)
	s.ldp = &models.PoliticalParty{ID: 10, Name: "自由民主党"}
}

func TestLinkerSuite(t *testing.T) {
	suite.Run(t, new(LinkerSuite))
}

// electedPolitician seeds a politician with a winning member row and an
// affiliation history covering the election date.
func (s *LinkerSuite) electedPolitician(name string, partyID *int64) *models.Politician {
	ctx := context.Background()
	p, err := s.politicians.Create(ctx, &models.Politician{Name: name})
	s.Require().NoError(err)
	_, err = s.members.Create(ctx, &models.ElectionMember{
		ElectionID: s.election.ID, PoliticianID: p.ID, Result: models.ResultElected,
	})
	s.Require().NoError(err)
	if partyID != nil {
		_, err = s.histories.Create(ctx, &models.PartyMembershipHistory{
			PoliticianID: p.ID, PartyID: *partyID,
			StartDate: s.election.ElectionDate.AddDate(-1, 0, 0),
		})
		s.Require().NoError(err)
	}
	return p
}

func (s *LinkerSuite) activeGroup(name string, partyID *int64) *models.ParliamentaryGroup {
	g, err := s.groups.CreateGroup(context.Background(), &models.ParliamentaryGroup{
		Name: name, GoverningBodyID: 1, PartyID: partyID, IsActive: true,
	})
	s.Require().NoError(err)
	return g
}

func (s *LinkerSuite) TestUnknownTermIsAggregateError() {
	result, err := s.linker.Execute(context.Background(), Input{TermNumber: 99, GoverningBodyID: 1})
	s.Require().NoError(err)
	s.Equal(1, result.Errors)
	s.Zero(result.LinkedCount)
}

func (s *LinkerSuite) TestLinksOneToOne() {
	p := s.electedPolitician("山田太郎", &s.ldp.ID)
	g := s.activeGroup("自由民主党・無所属の会", &s.ldp.ID)

	result, err := s.linker.Execute(context.Background(), Input{TermNumber: 49, GoverningBodyID: 1})
	s.Require().NoError(err)

	s.Equal(1, result.TotalElected)
	s.Equal(1, result.LinkedCount)
	s.Zero(result.AlreadyExistedCount)
	s.Require().Len(result.LinkedMembers, 1)
	s.Equal(p.ID, result.LinkedMembers[0].PoliticianID)
	s.Equal(g.ID, result.LinkedMembers[0].GroupID)
	s.False(result.LinkedMembers[0].WasExisting)
	s.Equal(1, s.groups.MembershipCount())
}

func (s *LinkerSuite) TestRerunCountsExisting() {
	s.electedPolitician("山田太郎", &s.ldp.ID)
	s.activeGroup("自由民主党・無所属の会", &s.ldp.ID)

	ctx := context.Background()
	_, err := s.linker.Execute(ctx, Input{TermNumber: 49, GoverningBodyID: 1})
	s.Require().NoError(err)

	second, err := s.linker.Execute(ctx, Input{TermNumber: 49, GoverningBodyID: 1})
	s.Require().NoError(err)
	s.Zero(second.LinkedCount)
	s.Equal(1, second.AlreadyExistedCount)
	s.Require().Len(second.LinkedMembers, 1)
	s.True(second.LinkedMembers[0].WasExisting)
	s.Equal(1, s.groups.MembershipCount())
}

func (s *LinkerSuite) TestSkipReasons() {
	ctx := context.Background()

	cdpID := int64(20)
	s.electedPolitician("無所属次郎", nil)          // no affiliation history
	s.electedPolitician("立憲花子", &cdpID)         // party has no group
	s.electedPolitician("自民太郎", &s.ldp.ID)      // party maps to two groups
	s.activeGroup("自由民主党", &s.ldp.ID)
	s.activeGroup("自由民主党・無所属の会", &s.ldp.ID)

	result, err := s.linker.Execute(ctx, Input{TermNumber: 49, GoverningBodyID: 1})
	s.Require().NoError(err)

	s.Equal(3, result.TotalElected)
	s.Equal(1, result.SkippedNoParty)
	s.Equal(1, result.SkippedNoGroup)
	s.Equal(1, result.SkippedMultipleGroups)
	s.Zero(result.LinkedCount)
	s.Len(result.SkippedMembers, 3)
	s.Zero(s.groups.MembershipCount())
}

func (s *LinkerSuite) TestLostCandidatesIgnored() {
	ctx := context.Background()
	p, err := s.politicians.Create(ctx, &models.Politician{Name: "落選太郎"})
	s.Require().NoError(err)
	_, err = s.members.Create(ctx, &models.ElectionMember{
		ElectionID: s.election.ID, PoliticianID: p.ID, Result: models.ResultLost,
	})
	s.Require().NoError(err)
	s.activeGroup("自由民主党", &s.ldp.ID)

	result, err := s.linker.Execute(ctx, Input{TermNumber: 49, GoverningBodyID: 1})
	s.Require().NoError(err)
	s.Zero(result.TotalElected)
	s.Zero(s.groups.MembershipCount())
}

func (s *LinkerSuite) TestDryRunWritesNothing() {
	s.electedPolitician("山田太郎", &s.ldp.ID)
	s.activeGroup("自由民主党", &s.ldp.ID)

	result, err := s.linker.Execute(context.Background(), Input{TermNumber: 49, GoverningBodyID: 1, DryRun: true})
	s.Require().NoError(err)
	s.Equal(1, result.LinkedCount)
	s.Zero(s.groups.MembershipCount())
}

func (s *LinkerSuite) TestInactiveGroupsExcluded() {
	s.electedPolitician("山田太郎", &s.ldp.ID)
	g, err := s.groups.CreateGroup(context.Background(), &models.ParliamentaryGroup{
		Name: "旧会派", GoverningBodyID: 1, PartyID: &s.ldp.ID, IsActive: false,
	})
	s.Require().NoError(err)
	_ = g

	result, err := s.linker.Execute(context.Background(), Input{TermNumber: 49, GoverningBodyID: 1})
	s.Require().NoError(err)
	s.Equal(1, result.SkippedNoGroup)
	s.Zero(result.LinkedCount)
}
