package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/polibase/polibase/internal/election/importer"
	"github.com/polibase/polibase/internal/election/linker"
	"github.com/polibase/polibase/internal/election/metrics"
	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/internal/election/service"
	"github.com/polibase/polibase/internal/election/source/mocks"
	"github.com/polibase/polibase/internal/election/tenure"
	electionstore "github.com/polibase/polibase/internal/election/store/election"
	"github.com/polibase/polibase/internal/election/store/member"
	"github.com/polibase/polibase/internal/election/store/party"
	"github.com/polibase/polibase/internal/election/store/partyhistory"
	"github.com/polibase/polibase/internal/election/store/politician"
	"github.com/polibase/polibase/pkg/platform/audit"
	auditmemory "github.com/polibase/polibase/pkg/platform/audit/store/memory"
)

type stubGeneral struct {
	fn func(ctx context.Context, input importer.GeneralInput) (*importer.GeneralResult, error)
}

func (s stubGeneral) Execute(ctx context.Context, input importer.GeneralInput) (*importer.GeneralResult, error) {
	return s.fn(ctx, input)
}

type stubLinker struct {
	fn func(ctx context.Context, input linker.Input) (*linker.Result, error)
}

func (s stubLinker) Execute(ctx context.Context, input linker.Input) (*linker.Result, error) {
	return s.fn(ctx, input)
}

type stubPopulator struct {
	fn func(ctx context.Context, input tenure.Input) (*tenure.Result, error)
}

func (s stubPopulator) Execute(ctx context.Context, input tenure.Input) (*tenure.Result, error) {
	return s.fn(ctx, input)
}

type HandlerSuite struct {
	suite.Suite

	ctrl     *gomock.Controller
	members  *member.MemoryStore
	source   *mocks.MockElectionSource
	auditLog *auditmemory.Store

	general   GeneralPipeline
	linker    GroupLinker
	populator TenurePopulator

	router chi.Router
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	politicians := politician.NewMemory()
	parties := party.NewMemory()
	histories := partyhistory.NewMemory()
	elections := electionstore.NewMemory()
	s.members = member.NewMemory()
	s.source = mocks.NewMockElectionSource(s.ctrl)
	s.auditLog = auditmemory.New()

	factory := service.NewFactory(politicians, parties, histories, elections, slog.Default())
	s.general = importer.NewGeneral(factory, s.members, s.source, slog.Default())
	s.linker = stubLinker{fn: func(context.Context, linker.Input) (*linker.Result, error) {
		return &linker.Result{TotalElected: 3, LinkedCount: 2, SkippedNoParty: 1}, nil
	}}
	s.populator = stubPopulator{fn: func(context.Context, tenure.Input) (*tenure.Result, error) {
		return &tenure.Result{TotalElected: 2, CreatedCount: 2}, nil
	}}

	s.rebuildRouter()
}

func (s *HandlerSuite) rebuildRouter() {
	publisher := audit.NewPublisher(s.auditLog)
	h := New(
		s.general,
		importer.NewCouncillors(nil, s.members, nil, slog.Default()),
		importer.NewProportional(nil, s.members, nil, slog.Default()),
		s.linker,
		s.populator,
		s.auditLog,
		publisher,
		metrics.NewWith(prometheus.NewRegistry()),
		slog.Default(),
	)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) post(path, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func (s *HandlerSuite) TestGeneralImportEndToEnd() {
	info := &models.ElectionInfo{ElectionDate: time.Date(2021, 10, 31, 0, 0, 0, 0, time.UTC)}
	s.source.EXPECT().FetchCandidates(gomock.Any(), 49).Return(info, []models.CandidateRecord{
		{Name: "山田太郎", PartyName: "未来党", Prefecture: "東京都", DistrictName: "東京1区", TotalVotes: 120000, Rank: 1, IsElected: true},
		{Name: "佐藤花子", PartyName: "革新党", Prefecture: "東京都", DistrictName: "東京1区", TotalVotes: 90000, Rank: 2, IsElected: false},
	}, nil)

	w := s.post("/imports/general", `{"election_number":49,"governing_body_id":1}`)
	s.Require().Equal(http.StatusOK, w.Code)

	var result importer.GeneralResult
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&result))
	s.Equal(2, result.TotalCandidates)
	s.Equal(2, result.MembersCreated)
	s.Equal(2, s.members.Count())

	events, err := s.auditLog.ListRecent(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionGeneralImport, events[0].Action)
	s.Equal(audit.OutcomeCompleted, events[0].Outcome)
	s.Equal(2, events[0].Summary["election_members_created"])
}

func (s *HandlerSuite) TestGeneralImportValidation() {
	w := s.post("/imports/general", `{"election_number":0,"governing_body_id":1}`)
	s.Equal(http.StatusBadRequest, w.Code)

	events, err := s.auditLog.ListRecent(context.Background(), 10)
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *HandlerSuite) TestMalformedBodyRejected() {
	w := s.post("/imports/general", `{"election_number":`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestPipelineFailureAuditedAndReported() {
	s.general = stubGeneral{fn: func(context.Context, importer.GeneralInput) (*importer.GeneralResult, error) {
		return nil, errors.New("fetch election 49: connection refused")
	}}
	s.rebuildRouter()

	w := s.post("/imports/general", `{"election_number":49,"governing_body_id":1}`)
	s.Equal(http.StatusInternalServerError, w.Code)

	var body map[string]string
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	s.Equal("internal_error", body["error"])
	s.NotContains(body, "error_description")

	events, err := s.auditLog.ListRecent(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.OutcomeFailed, events[0].Outcome)
	s.Contains(events[0].Detail, "connection refused")
}

func (s *HandlerSuite) TestLinkageRoute() {
	w := s.post("/linkage/parliamentary-groups", `{"term_number":50,"governing_body_id":1}`)
	s.Require().Equal(http.StatusOK, w.Code)

	var result linker.Result
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&result))
	s.Equal(2, result.LinkedCount)
	s.Equal(1, result.SkippedNoParty)
}

func (s *HandlerSuite) TestTenureRouteRequiresConferenceName() {
	w := s.post("/tenure/populate", `{"term_number":50,"governing_body_id":1}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestTenureRoute() {
	w := s.post("/tenure/populate", `{"term_number":50,"governing_body_id":1,"conference_name":"衆議院本会議"}`)
	s.Require().Equal(http.StatusOK, w.Code)

	var result tenure.Result
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&result))
	s.Equal(2, result.CreatedCount)
}

func (s *HandlerSuite) TestAuditEventsEndpoint() {
	w := s.post("/linkage/parliamentary-groups", `{"term_number":50,"governing_body_id":1}`)
	s.Require().Equal(http.StatusOK, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/audit/events?limit=5", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, r)
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		Events []audit.Event `json:"events"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Require().Len(body.Events, 1)
	s.Equal(audit.ActionGroupLinkage, body.Events[0].Action)
}

func (s *HandlerSuite) TestAuditEventsRejectsBadLimit() {
	r := httptest.NewRequest(http.MethodGet, "/audit/events?limit=zero", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, r)
	s.Equal(http.StatusBadRequest, rec.Code)
}
