package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/polibase/polibase/internal/election/models"
	electionstore "github.com/polibase/polibase/internal/election/store/election"
	"github.com/polibase/polibase/internal/election/store/party"
	"github.com/polibase/polibase/internal/election/store/partyhistory"
	"github.com/polibase/polibase/internal/election/store/politician"
)

type ImportServiceSuite struct {
	suite.Suite

	politicians *politician.MemoryStore
	parties     *party.MemoryStore
	histories   *partyhistory.MemoryStore
	elections   *electionstore.MemoryStore
	service     *ImportService
}

func (s *ImportServiceSuite) SetupTest() {
	s.politicians = politician.NewMemory()
	s.parties = party.NewMemory()
	s.histories = partyhistory.NewMemory()
	s.elections = electionstore.NewMemory()
	s.service = NewImportService(s.politicians, s.parties, s.histories, s.elections, slog.Default())
}

func TestImportServiceSuite(t *testing.T) {
	suite.Run(t, new(ImportServiceSuite))
}

func (s *ImportServiceSuite) TestResolveParty() {
	ctx := context.Background()

	s.Run("blank name resolves to nil without side effects", func() {
		p, isNew, err := s.service.ResolveParty(ctx, "")
		s.Require().NoError(err)
		s.Nil(p)
		s.False(isNew)
	})

	s.Run("unknown party is created once", func() {
		p, isNew, err := s.service.ResolveParty(ctx, "自由民主党")
		s.Require().NoError(err)
		s.Require().NotNil(p)
		s.True(isNew)

		again, isNew, err := s.service.ResolveParty(ctx, "自由民主党")
		s.Require().NoError(err)
		s.Equal(p.ID, again.ID)
		s.False(isNew)
	})

	s.Run("existing party is found, not created", func() {
		existing, err := s.parties.Create(ctx, &models.PoliticalParty{Name: "立憲民主党"})
		s.Require().NoError(err)

		p, isNew, err := s.service.ResolveParty(ctx, "立憲民主党")
		s.Require().NoError(err)
		s.Equal(existing.ID, p.ID)
		s.False(isNew)
	})

	s.Run("cache survives until cleared", func() {
		p1, _, err := s.service.ResolveParty(ctx, "公明党")
		s.Require().NoError(err)

		s.service.ClearCache()
		p2, isNew, err := s.service.ResolveParty(ctx, "公明党")
		s.Require().NoError(err)
		s.Equal(p1.ID, p2.ID)
		s.False(isNew)
	})
}

func (s *ImportServiceSuite) TestMatchPolitician() {
	ctx := context.Background()

	s.Run("unknown name is not found", func() {
		p, status, err := s.service.MatchPolitician(ctx, "存在しない名前", nil, nil)
		s.Require().NoError(err)
		s.Nil(p)
		s.Equal(MatchNotFound, status)
	})

	s.Run("single candidate matches regardless of party", func() {
		created, err := s.politicians.Create(ctx, &models.Politician{Name: "鈴木一郎"})
		s.Require().NoError(err)

		p, status, err := s.service.MatchPolitician(ctx, "鈴木　一郎", nil, nil)
		s.Require().NoError(err)
		s.Equal(MatchFound, status)
		s.Equal(created.ID, p.ID)
	})

	s.Run("homonyms without party hint are ambiguous", func() {
		_, err := s.politicians.Create(ctx, &models.Politician{Name: "佐藤太郎"})
		s.Require().NoError(err)
		_, err = s.politicians.Create(ctx, &models.Politician{Name: "佐藤太郎"})
		s.Require().NoError(err)

		p, status, err := s.service.MatchPolitician(ctx, "佐藤太郎", nil, nil)
		s.Require().NoError(err)
		s.Nil(p)
		s.Equal(MatchAmbiguous, status)
	})
}

func (s *ImportServiceSuite) TestMatchPolitician_PartyDisambiguation() {
	ctx := context.Background()
	asOf := time.Date(2021, 10, 31, 0, 0, 0, 0, time.UTC)

	ldp, err := s.parties.Create(ctx, &models.PoliticalParty{Name: "自由民主党"})
	s.Require().NoError(err)
	cdp, err := s.parties.Create(ctx, &models.PoliticalParty{Name: "立憲民主党"})
	s.Require().NoError(err)

	a, err := s.politicians.Create(ctx, &models.Politician{Name: "田中花子"})
	s.Require().NoError(err)
	b, err := s.politicians.Create(ctx, &models.Politician{Name: "田中花子"})
	s.Require().NoError(err)

	s.Run("history active at asOf decides", func() {
		_, err := s.histories.Create(ctx, &models.PartyMembershipHistory{
			PoliticianID: a.ID, PartyID: ldp.ID,
			StartDate: asOf.AddDate(-3, 0, 0),
		})
		s.Require().NoError(err)
		_, err = s.histories.Create(ctx, &models.PartyMembershipHistory{
			PoliticianID: b.ID, PartyID: cdp.ID,
			StartDate: asOf.AddDate(-3, 0, 0),
		})
		s.Require().NoError(err)

		p, status, err := s.service.MatchPolitician(ctx, "田中花子", &ldp.ID, &asOf)
		s.Require().NoError(err)
		s.Equal(MatchFound, status)
		s.Equal(a.ID, p.ID)
	})

	s.Run("history wins over a stale denormalized field", func() {
		// b's column says LDP but b's history says CDP; b must not match LDP.
		stale := *b
		stale.PartyID = &ldp.ID
		s.Require().NoError(s.politicians.Update(ctx, &stale))

		p, status, err := s.service.MatchPolitician(ctx, "田中花子", &ldp.ID, &asOf)
		s.Require().NoError(err)
		s.Equal(MatchFound, status)
		s.Equal(a.ID, p.ID)
	})

	s.Run("denormalized field decides for history-less candidates", func() {
		c, err := s.politicians.Create(ctx, &models.Politician{Name: "高橋次郎", PartyID: &cdp.ID})
		s.Require().NoError(err)
		d, err := s.politicians.Create(ctx, &models.Politician{Name: "高橋次郎", PartyID: &ldp.ID})
		s.Require().NoError(err)
		_ = d

		p, status, err := s.service.MatchPolitician(ctx, "高橋次郎", &cdp.ID, &asOf)
		s.Require().NoError(err)
		s.Equal(MatchFound, status)
		s.Equal(c.ID, p.ID)
	})

	s.Run("nil asOf consults only the denormalized field", func() {
		// a's history says LDP, but the column was never set; without a
		// date the history is not consulted, so only b (stale column:
		// LDP, history: CDP) can match an LDP hint.
		p, status, err := s.service.MatchPolitician(ctx, "田中花子", &ldp.ID, nil)
		s.Require().NoError(err)
		s.Equal(MatchFound, status)
		s.Equal(b.ID, p.ID)
	})

	s.Run("both affiliated with the hinted party stays ambiguous", func() {
		e, err := s.politicians.Create(ctx, &models.Politician{Name: "伊藤三郎", PartyID: &ldp.ID})
		s.Require().NoError(err)
		f, err := s.politicians.Create(ctx, &models.Politician{Name: "伊藤三郎", PartyID: &ldp.ID})
		s.Require().NoError(err)
		_, _ = e, f

		p, status, err := s.service.MatchPolitician(ctx, "伊藤三郎", &ldp.ID, &asOf)
		s.Require().NoError(err)
		s.Nil(p)
		s.Equal(MatchAmbiguous, status)
	})
}

func (s *ImportServiceSuite) TestCreatePolitician() {
	ctx := context.Background()
	asOf := time.Date(2022, 7, 10, 0, 0, 0, 0, time.UTC)

	ldp, err := s.parties.Create(ctx, &models.PoliticalParty{Name: "自由民主党"})
	s.Require().NoError(err)

	s.Run("name is normalized and history recorded", func() {
		p := s.service.CreatePolitician(ctx, "山本　五郎", "東京都", "東京1区", &ldp.ID, &asOf)
		s.Require().NotNil(p)
		s.Equal("山本五郎", p.Name)

		hs, err := s.histories.ListByPolitician(ctx, p.ID)
		s.Require().NoError(err)
		s.Require().Len(hs, 1)
		s.Equal(ldp.ID, hs[0].PartyID)
		s.True(hs[0].StartDate.Equal(asOf))
		s.Nil(hs[0].EndDate)
	})

	s.Run("no history without an as-of date", func() {
		p := s.service.CreatePolitician(ctx, "中村六郎", "", "", &ldp.ID, nil)
		s.Require().NotNil(p)

		hs, err := s.histories.ListByPolitician(ctx, p.ID)
		s.Require().NoError(err)
		s.Empty(hs)
	})

	s.Run("store failure yields nil, not a panic", func() {
		s.politicians.FailCreateFor("失敗太郎")
		p := s.service.CreatePolitician(ctx, "失敗太郎", "", "", nil, nil)
		s.Nil(p)
	})
}

func (s *ImportServiceSuite) TestGetOrCreateElection() {
	ctx := context.Background()
	date := time.Date(2021, 10, 31, 0, 0, 0, 0, time.UTC)

	e, isNew, err := s.service.GetOrCreateElection(ctx, 1, 49, date, models.ElectionTypeGeneral)
	s.Require().NoError(err)
	s.True(isNew)
	s.Equal(49, e.TermNumber)

	again, isNew, err := s.service.GetOrCreateElection(ctx, 1, 49, date.AddDate(1, 0, 0), models.ElectionTypeGeneral)
	s.Require().NoError(err)
	s.False(isNew)
	s.Equal(e.ID, again.ID)
	s.True(again.ElectionDate.Equal(date))
}

func (s *ImportServiceSuite) TestFactoryBuildsIndependentServices() {
	ctx := context.Background()
	factory := NewFactory(s.politicians, s.parties, s.histories, s.elections, slog.Default())

	first := factory.New()
	second := factory.New()
	s.Require().NotSame(first, second)

	// Services share the stores but never a cache: the second run sees
	// the party through the store, not through the first run's cache.
	p1, isNew, err := first.ResolveParty(ctx, "自由民主党")
	s.Require().NoError(err)
	s.True(isNew)

	p2, isNew, err := second.ResolveParty(ctx, "自由民主党")
	s.Require().NoError(err)
	s.False(isNew)
	s.Equal(p1.ID, p2.ID)
	s.Equal(1, s.parties.Count())
}
