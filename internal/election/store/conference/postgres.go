package conference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/pkg/platform/sentinel"
	txcontext "github.com/polibase/polibase/pkg/platform/tx"
)

// PostgresStore persists conferences and seat tenures in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed conference store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) GetByNameAndGoverningBody(ctx context.Context, name string, governingBodyID int64) (*models.Conference, error) {
	query := `
		SELECT id, name, governing_body_id
		FROM conferences
		WHERE name = $1 AND governing_body_id = $2
	`
	var c models.Conference
	err := s.q(ctx).QueryRowContext(ctx, query, name, governingBodyID).Scan(&c.ID, &c.Name, &c.GoverningBodyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conference: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) CreateConference(ctx context.Context, c *models.Conference) (*models.Conference, error) {
	query := `
		INSERT INTO conferences (name, governing_body_id)
		VALUES ($1, $2)
		RETURNING id
	`
	created := *c
	err := s.q(ctx).QueryRowContext(ctx, query, c.Name, c.GoverningBodyID).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert conference: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, conferenceID int64) ([]*models.ConferenceMember, error) {
	query := `
		SELECT id, politician_id, conference_id, start_date, end_date
		FROM conference_members
		WHERE conference_id = $1
		ORDER BY start_date, politician_id
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, conferenceID)
	if err != nil {
		return nil, fmt.Errorf("list conference members: %w", err)
	}
	defer rows.Close()

	var out []*models.ConferenceMember
	for rows.Next() {
		var (
			m   models.ConferenceMember
			end sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.PoliticianID, &m.ConferenceID, &m.StartDate, &end); err != nil {
			return nil, fmt.Errorf("scan conference member: %w", err)
		}
		if end.Valid {
			m.EndDate = &end.Time
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conference members: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpsertMember(ctx context.Context, politicianID, conferenceID int64, startDate time.Time, endDate *time.Time) error {
	query := `
		INSERT INTO conference_members (politician_id, conference_id, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (politician_id, conference_id, start_date) DO NOTHING
	`
	var end sql.NullTime
	if endDate != nil {
		end = sql.NullTime{Time: *endDate, Valid: true}
	}
	if _, err := s.q(ctx).ExecContext(ctx, query, politicianID, conferenceID, startDate, end); err != nil {
		return fmt.Errorf("upsert conference member: %w", err)
	}
	return nil
}
