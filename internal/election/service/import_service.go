package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/polibase/polibase/internal/election/models"
	electionstore "github.com/polibase/polibase/internal/election/store/election"
	"github.com/polibase/polibase/internal/election/store/party"
	"github.com/polibase/polibase/internal/election/store/partyhistory"
	"github.com/polibase/polibase/internal/election/store/politician"
	"github.com/polibase/polibase/pkg/platform/sentinel"
)

// MatchStatus reports how a politician lookup resolved.
type MatchStatus string

const (
	// MatchFound means exactly one politician survived resolution.
	MatchFound MatchStatus = "matched"
	// MatchNotFound means no politician carries the name.
	MatchNotFound MatchStatus = "not_found"
	// MatchAmbiguous means several candidates remain after party
	// disambiguation. The pipelines skip these rather than guess.
	MatchAmbiguous MatchStatus = "ambiguous"
)

// ImportService is the resolution core of the reconciliation pipelines.
// The party cache is owned by one pipeline run: pipelines build a fresh
// value per Execute through Factory, so concurrent runs never share it.
type ImportService struct {
	politicians politician.Store
	parties     party.Store
	histories   partyhistory.Store
	elections   electionstore.Store
	logger      *slog.Logger

	partyCache map[string]*models.PoliticalParty
}

func NewImportService(
	politicians politician.Store,
	parties party.Store,
	histories partyhistory.Store,
	elections electionstore.Store,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		politicians: politicians,
		parties:     parties,
		histories:   histories,
		elections:   elections,
		logger:      logger,
		partyCache:  make(map[string]*models.PoliticalParty),
	}
}

// ClearCache drops the party cache, resetting a service for reuse within
// a single goroutine.
func (s *ImportService) ClearCache() {
	s.partyCache = make(map[string]*models.PoliticalParty)
}

// Factory hands out one ImportService per pipeline run. The stores are
// shared and safe for concurrent use; the per-run service keeps the
// party cache private to its invocation.
type Factory struct {
	politicians politician.Store
	parties     party.Store
	histories   partyhistory.Store
	elections   electionstore.Store
	logger      *slog.Logger
}

func NewFactory(
	politicians politician.Store,
	parties party.Store,
	histories partyhistory.Store,
	elections electionstore.Store,
	logger *slog.Logger,
) *Factory {
	return &Factory{
		politicians: politicians,
		parties:     parties,
		histories:   histories,
		elections:   elections,
		logger:      logger,
	}
}

// New builds a service with an empty party cache over the shared stores.
func (f *Factory) New() *ImportService {
	return NewImportService(f.politicians, f.parties, f.histories, f.elections, f.logger)
}

// ResolveParty finds or creates the party named name. A blank name
// resolves to nil with no side effects. isNew reports whether the call
// created the party. Only resolved parties enter the cache; failed
// lookups are retried on the next call.
func (s *ImportService) ResolveParty(ctx context.Context, name string) (*models.PoliticalParty, bool, error) {
	if name == "" {
		return nil, false, nil
	}
	if p, ok := s.partyCache[name]; ok {
		return p, false, nil
	}

	p, err := s.parties.GetByName(ctx, name)
	if err == nil {
		s.partyCache[name] = p
		return p, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, fmt.Errorf("get party %q: %w", name, err)
	}

	created, err := s.parties.Create(ctx, &models.PoliticalParty{Name: name})
	if err != nil {
		return nil, false, fmt.Errorf("create party %q: %w", name, err)
	}
	s.logger.Info("created party", slog.String("name", name), slog.Int64("id", created.ID))
	s.partyCache[name] = created
	return created, true, nil
}

// MatchPolitician resolves name to at most one politician. Matching is
// exact on the normalized name. When several politicians share the name
// and a party is given, affiliation history active at asOf narrows the
// field, falling back to each candidate's denormalized party field when
// that candidate has no history row; with a nil asOf only the
// denormalized field is consulted. Anything but a single survivor is
// ambiguous.
func (s *ImportService) MatchPolitician(ctx context.Context, name string, partyID *int64, asOf *time.Time) (*models.Politician, MatchStatus, error) {
	normalized := NormalizeName(name)

	candidates, err := s.politicians.SearchByName(ctx, normalized)
	if err != nil {
		return nil, "", fmt.Errorf("search politicians %q: %w", normalized, err)
	}

	switch len(candidates) {
	case 0:
		return nil, MatchNotFound, nil
	case 1:
		return candidates[0], MatchFound, nil
	}

	if partyID == nil {
		s.logger.Warn("ambiguous politician name",
			slog.String("name", normalized),
			slog.Int("candidates", len(candidates)))
		return nil, MatchAmbiguous, nil
	}

	filtered, err := s.filterByParty(ctx, candidates, *partyID, asOf)
	if err != nil {
		return nil, "", err
	}
	if len(filtered) == 1 {
		return filtered[0], MatchFound, nil
	}

	s.logger.Warn("ambiguous politician name after party filter",
		slog.String("name", normalized),
		slog.Int("candidates", len(candidates)),
		slog.Int("survivors", len(filtered)))
	return nil, MatchAmbiguous, nil
}

// filterByParty keeps candidates affiliated with partyID. With an asOf
// date, the history active at that date is authoritative for a candidate
// when present, and the denormalized party column decides only for
// candidates with no history row at all. Without a date there is no
// interval to consult: the denormalized column decides alone.
func (s *ImportService) filterByParty(ctx context.Context, candidates []*models.Politician, partyID int64, asOf *time.Time) ([]*models.Politician, error) {
	if asOf == nil {
		var filtered []*models.Politician
		for _, c := range candidates {
			if c.PartyID != nil && *c.PartyID == partyID {
				filtered = append(filtered, c)
			}
		}
		return filtered, nil
	}
	at := *asOf

	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	active, err := s.histories.CurrentByPoliticians(ctx, ids, at)
	if err != nil {
		return nil, fmt.Errorf("fetch affiliation histories: %w", err)
	}

	var filtered []*models.Politician
	for _, c := range candidates {
		if h, ok := active[c.ID]; ok {
			if h.PartyID == partyID {
				filtered = append(filtered, c)
			}
			continue
		}
		if c.PartyID != nil && *c.PartyID == partyID {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// CreatePolitician stores a new politician under the normalized name.
// With both partyID and asOf set, one open-ended affiliation interval
// starting at asOf is recorded alongside. Failures are logged and
// reported as a nil politician so one bad row never aborts a batch; a
// failed history insert leaves the politician in place.
func (s *ImportService) CreatePolitician(ctx context.Context, name, prefecture, district string, partyID *int64, asOf *time.Time) *models.Politician {
	p := &models.Politician{
		Name:       NormalizeName(name),
		Prefecture: prefecture,
		District:   district,
		PartyID:    partyID,
	}
	created, err := s.politicians.Create(ctx, p)
	if err != nil {
		s.logger.Error("create politician failed",
			slog.String("name", p.Name),
			slog.String("error", err.Error()))
		return nil
	}

	if partyID != nil && asOf != nil {
		_, err := s.histories.Create(ctx, &models.PartyMembershipHistory{
			PoliticianID: created.ID,
			PartyID:      *partyID,
			StartDate:    *asOf,
		})
		if err != nil {
			s.logger.Error("create affiliation history failed",
				slog.Int64("politician_id", created.ID),
				slog.String("error", err.Error()))
		}
	}
	return created
}

// GetOrCreateElection resolves the election of (governingBodyID,
// termNumber), creating it with the given date and type when absent.
// isNew reports whether the call created it.
func (s *ImportService) GetOrCreateElection(ctx context.Context, governingBodyID int64, termNumber int, electionDate time.Time, electionType string) (*models.Election, bool, error) {
	e, err := s.elections.GetByGoverningBodyAndTerm(ctx, governingBodyID, termNumber)
	if err == nil {
		return e, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, fmt.Errorf("get election term %d: %w", termNumber, err)
	}

	created, err := s.elections.Create(ctx, &models.Election{
		GoverningBodyID: governingBodyID,
		TermNumber:      termNumber,
		ElectionDate:    electionDate,
		ElectionType:    electionType,
	})
	if err != nil {
		return nil, false, fmt.Errorf("create election term %d: %w", termNumber, err)
	}
	s.logger.Info("created election",
		slog.Int("term", termNumber),
		slog.String("type", electionType),
		slog.String("date", electionDate.Format("2006-01-02")))
	return created, true, nil
}
