package partyhistory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/pkg/platform/sentinel"
	txcontext "github.com/polibase/polibase/pkg/platform/tx"
)

// PostgresStore persists affiliation history in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed history store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) CurrentByPoliticians(ctx context.Context, politicianIDs []int64, asOf time.Time) (map[int64]*models.PartyMembershipHistory, error) {
	if len(politicianIDs) == 0 {
		return map[int64]*models.PartyMembershipHistory{}, nil
	}
	// DISTINCT ON keeps the interval with the latest start date per
	// politician among those active at asOf.
	query := `
		SELECT DISTINCT ON (politician_id)
		       id, politician_id, political_party_id, start_date, end_date
		FROM party_membership_histories
		WHERE politician_id = ANY($1)
		  AND start_date <= $2
		  AND (end_date IS NULL OR end_date >= $2)
		ORDER BY politician_id, start_date DESC
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, pq.Array(politicianIDs), asOf)
	if err != nil {
		return nil, fmt.Errorf("query current memberships: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*models.PartyMembershipHistory)
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out[h.PoliticianID] = h
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Create(ctx context.Context, h *models.PartyMembershipHistory) (*models.PartyMembershipHistory, error) {
	q := s.q(ctx)

	// Temporal invariants are enforced here rather than by a table
	// constraint so memory and postgres implementations agree.
	checkQuery := `
		SELECT EXISTS (
			SELECT 1
			FROM party_membership_histories
			WHERE politician_id = $1
			  AND (end_date IS NULL OR end_date >= $2)
			  AND ($3::date IS NULL OR start_date <= $3)
		)
	`
	var conflict bool
	if err := q.QueryRowContext(ctx, checkQuery, h.PoliticianID, h.StartDate, h.EndDate).Scan(&conflict); err != nil {
		return nil, fmt.Errorf("check membership overlap: %w", err)
	}
	if conflict {
		return nil, fmt.Errorf("membership overlaps existing interval for politician %d: %w", h.PoliticianID, sentinel.ErrConflict)
	}

	insertQuery := `
		INSERT INTO party_membership_histories (politician_id, political_party_id, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	created := *h
	err := q.QueryRowContext(ctx, insertQuery,
		h.PoliticianID,
		h.PartyID,
		h.StartDate,
		h.EndDate,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert membership history: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) ListByPolitician(ctx context.Context, politicianID int64) ([]*models.PartyMembershipHistory, error) {
	query := `
		SELECT id, politician_id, political_party_id, start_date, end_date
		FROM party_membership_histories
		WHERE politician_id = $1
		ORDER BY start_date
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, politicianID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var out []*models.PartyMembershipHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return out, nil
}

func scanHistory(rows *sql.Rows) (*models.PartyMembershipHistory, error) {
	var (
		h   models.PartyMembershipHistory
		end sql.NullTime
	)
	if err := rows.Scan(&h.ID, &h.PoliticianID, &h.PartyID, &h.StartDate, &end); err != nil {
		return nil, fmt.Errorf("scan membership history: %w", err)
	}
	if end.Valid {
		h.EndDate = &end.Time
	}
	return &h, nil
}
