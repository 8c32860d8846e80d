package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/polibase/polibase/internal/election/models"
	txcontext "github.com/polibase/polibase/pkg/platform/tx"
)

// PostgresStore persists groups and memberships in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed group store.
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

func (s *PostgresStore) ListByGoverningBody(ctx context.Context, governingBodyID int64, activeOnly bool) ([]*models.ParliamentaryGroup, error) {
	query := `
		SELECT id, name, governing_body_id, political_party_id, is_active
		FROM parliamentary_groups
		WHERE governing_body_id = $1 AND ($2 = false OR is_active)
		ORDER BY id
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, governingBodyID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list parliamentary groups: %w", err)
	}
	defer rows.Close()

	var out []*models.ParliamentaryGroup
	for rows.Next() {
		var g models.ParliamentaryGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.GoverningBodyID, &g.PartyID, &g.IsActive); err != nil {
			return nil, fmt.Errorf("scan parliamentary group: %w", err)
		}
		out = append(out, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parliamentary groups: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateGroup(ctx context.Context, g *models.ParliamentaryGroup) (*models.ParliamentaryGroup, error) {
	query := `
		INSERT INTO parliamentary_groups (name, governing_body_id, political_party_id, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	created := *g
	err := s.q(ctx).QueryRowContext(ctx, query, g.Name, g.GoverningBodyID, g.PartyID, g.IsActive).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert parliamentary group: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) ListActiveMembershipsByGroup(ctx context.Context, groupID int64, asOf time.Time) ([]*models.ParliamentaryGroupMembership, error) {
	query := `
		SELECT id, politician_id, parliamentary_group_id, start_date, end_date
		FROM parliamentary_group_memberships
		WHERE parliamentary_group_id = $1
		  AND start_date <= $2
		  AND (end_date IS NULL OR end_date >= $2)
		ORDER BY id
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, groupID, asOf)
	if err != nil {
		return nil, fmt.Errorf("list group memberships: %w", err)
	}
	defer rows.Close()

	var out []*models.ParliamentaryGroupMembership
	for rows.Next() {
		var (
			m   models.ParliamentaryGroupMembership
			end sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.PoliticianID, &m.GroupID, &m.StartDate, &end); err != nil {
			return nil, fmt.Errorf("scan group membership: %w", err)
		}
		if end.Valid {
			m.EndDate = &end.Time
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group memberships: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateMembership(ctx context.Context, politicianID, groupID int64, startDate time.Time) (*models.ParliamentaryGroupMembership, error) {
	// The unique index on (politician_id, parliamentary_group_id,
	// start_date) makes re-runs no-ops at the storage level too.
	query := `
		INSERT INTO parliamentary_group_memberships (politician_id, parliamentary_group_id, start_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (politician_id, parliamentary_group_id, start_date) DO NOTHING
		RETURNING id
	`
	m := models.ParliamentaryGroupMembership{
		PoliticianID: politicianID,
		GroupID:      groupID,
		StartDate:    startDate,
	}
	err := s.q(ctx).QueryRowContext(ctx, query, politicianID, groupID, startDate).Scan(&m.ID)
	if errors.Is(err, sql.ErrNoRows) {
		// Already present; report the existing row shape without an id.
		return &m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("insert group membership: %w", err)
	}
	return &m, nil
}
