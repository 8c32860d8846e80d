package importer

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/internal/election/service"
	"github.com/polibase/polibase/internal/election/source/mocks"
	electionstore "github.com/polibase/polibase/internal/election/store/election"
	"github.com/polibase/polibase/internal/election/store/member"
	"github.com/polibase/polibase/internal/election/store/party"
	"github.com/polibase/polibase/internal/election/store/partyhistory"
	"github.com/polibase/polibase/internal/election/store/politician"
)

type ProportionalSuite struct {
	suite.Suite

	ctrl        *gomock.Controller
	politicians *politician.MemoryStore
	parties     *party.MemoryStore
	histories   *partyhistory.MemoryStore
	elections   *electionstore.MemoryStore
	members     *member.MemoryStore
	source      *mocks.MockProportionalSource
	pipeline    *Proportional
}

func (s *ProportionalSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.politicians = politician.NewMemory()
	s.parties = party.NewMemory()
	s.histories = partyhistory.NewMemory()
	s.elections = electionstore.NewMemory()
	s.members = member.NewMemory()
	s.source = mocks.NewMockProportionalSource(s.ctrl)

	factory := service.NewFactory(s.politicians, s.parties, s.histories, s.elections, slog.Default())
	s.pipeline = NewProportional(factory, s.members, s.source, slog.Default())
}

func TestProportionalSuite(t *testing.T) {
	suite.Run(t, new(ProportionalSuite))
}

func (s *ProportionalSuite) info() *models.ElectionInfo {
	return &models.ElectionInfo{ElectionDate: time.Date(2021, 10, 31, 0, 0, 0, 0, time.UTC)}
}

func (s *ProportionalSuite) TestClassification() {
	candidates := []models.ProportionalCandidateRecord{
		// District winner: no proportional record.
		{Name: "山田太郎", PartyName: "自由民主党", BlockName: "東京", ListOrder: 1, SMDResult: models.SMDResultWon, IsElected: true},
		// District loser revived on the list.
		{Name: "佐藤花子", PartyName: "自由民主党", BlockName: "東京", ListOrder: 2, SMDResult: models.SMDResultLost, IsElected: true},
		// Pure list candidate.
		{Name: "鈴木一郎", PartyName: "公明党", BlockName: "近畿", ListOrder: 1, SMDResult: "", IsElected: true},
		// Not elected: ignored entirely.
		{Name: "高橋次郎", PartyName: "公明党", BlockName: "近畿", ListOrder: 9, SMDResult: "", IsElected: false},
	}
	s.source.EXPECT().FetchProportional(gomock.Any(), 49).Return(s.info(), candidates, nil)

	result, err := s.pipeline.Execute(context.Background(), ProportionalInput{ElectionNumber: 49, GoverningBodyID: 1})
	s.Require().NoError(err)

	s.Equal(4, result.TotalCandidates)
	s.Equal(3, result.ElectedCandidates)
	s.Equal(1, result.SkippedSMDWinner)
	s.Equal(1, result.ProportionalRevival)
	s.Equal(1, result.ProportionalElected)
	s.Equal(2, result.MembersCreated)

	members, err := s.members.ListByElection(context.Background(), result.ElectionID)
	s.Require().NoError(err)
	s.Require().Len(members, 2)

	results := make(map[string]int)
	for _, m := range members {
		results[m.Result]++
	}
	s.Equal(1, results[models.ResultProportionalRevival])
	s.Equal(1, results[models.ResultProportional])
}

func (s *ProportionalSuite) TestRevivalMergesIntoDistrictRow() {
	ctx := context.Background()

	// Constituency pipeline already recorded the district loss.
	p, err := s.politicians.Create(ctx, &models.Politician{Name: "佐藤花子"})
	s.Require().NoError(err)
	election, err := s.elections.Create(ctx, &models.Election{
		GoverningBodyID: 1, TermNumber: 49,
		ElectionDate: s.info().ElectionDate,
		ElectionType: models.ElectionTypeGeneral,
	})
	s.Require().NoError(err)
	votes := 90000
	_, err = s.members.Create(ctx, &models.ElectionMember{
		ElectionID: election.ID, PoliticianID: p.ID,
		Result: models.ResultLost, Votes: &votes,
	})
	s.Require().NoError(err)

	candidates := []models.ProportionalCandidateRecord{
		{Name: "佐藤花子", PartyName: "自由民主党", BlockName: "東京", ListOrder: 2, SMDResult: models.SMDResultLost, IsElected: true},
	}
	s.source.EXPECT().FetchProportional(gomock.Any(), 49).Return(s.info(), candidates, nil)

	result, err := s.pipeline.Execute(ctx, ProportionalInput{ElectionNumber: 49, GoverningBodyID: 1})
	s.Require().NoError(err)
	s.Equal(1, result.ProportionalRevival)

	// Still one row: the district row was updated, not duplicated.
	members, err := s.members.ListByElection(ctx, election.ID)
	s.Require().NoError(err)
	s.Require().Len(members, 1)
	s.Equal(models.ResultProportionalRevival, members[0].Result)
	s.Require().NotNil(members[0].Rank)
	s.Equal(2, *members[0].Rank)
}

func (s *ProportionalSuite) TestRerunPreservesDistrictRows() {
	ctx := context.Background()

	p, err := s.politicians.Create(ctx, &models.Politician{Name: "山田太郎"})
	s.Require().NoError(err)
	election, err := s.elections.Create(ctx, &models.Election{
		GoverningBodyID: 1, TermNumber: 49,
		ElectionDate: s.info().ElectionDate,
		ElectionType: models.ElectionTypeGeneral,
	})
	s.Require().NoError(err)
	_, err = s.members.Create(ctx, &models.ElectionMember{
		ElectionID: election.ID, PoliticianID: p.ID, Result: models.ResultElected,
	})
	s.Require().NoError(err)

	candidates := []models.ProportionalCandidateRecord{
		{Name: "鈴木一郎", PartyName: "公明党", BlockName: "近畿", ListOrder: 1, SMDResult: "", IsElected: true},
	}
	s.source.EXPECT().FetchProportional(gomock.Any(), 49).Return(s.info(), candidates, nil).Times(2)

	_, err = s.pipeline.Execute(ctx, ProportionalInput{ElectionNumber: 49, GoverningBodyID: 1})
	s.Require().NoError(err)
	s.Equal(2, s.members.Count())

	_, err = s.pipeline.Execute(ctx, ProportionalInput{ElectionNumber: 49, GoverningBodyID: 1})
	s.Require().NoError(err)
	// The district 当選 row survives both resets.
	s.Equal(2, s.members.Count())

	members, err := s.members.ListByElection(ctx, election.ID)
	s.Require().NoError(err)
	results := make(map[string]int)
	for _, m := range members {
		results[m.Result]++
	}
	s.Equal(1, results[models.ResultElected])
	s.Equal(1, results[models.ResultProportional])
}

func (s *ProportionalSuite) TestEmptyFeedIsAggregateError() {
	s.source.EXPECT().FetchProportional(gomock.Any(), 49).Return(nil, nil, nil)

	result, err := s.pipeline.Execute(context.Background(), ProportionalInput{ElectionNumber: 49, GoverningBodyID: 1})
	s.Require().NoError(err)
	s.Equal(1, result.Errors)
	s.Zero(s.members.Count())
}

func (s *ProportionalSuite) TestDryRunWritesNothing() {
	candidates := []models.ProportionalCandidateRecord{
		{Name: "鈴木一郎", PartyName: "公明党", BlockName: "近畿", ListOrder: 1, IsElected: true},
	}
	s.source.EXPECT().FetchProportional(gomock.Any(), 49).Return(s.info(), candidates, nil)

	result, err := s.pipeline.Execute(context.Background(), ProportionalInput{ElectionNumber: 49, GoverningBodyID: 1, DryRun: true})
	s.Require().NoError(err)
	s.Equal(1, result.ElectedCandidates)
	s.Zero(s.members.Count())
	s.Zero(s.politicians.Count())
}
