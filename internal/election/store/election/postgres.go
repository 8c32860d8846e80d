package election

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/pkg/platform/sentinel"
	txcontext "github.com/polibase/polibase/pkg/platform/tx"
)

// PostgresStore persists elections in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed election store.
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

func (s *PostgresStore) GetByGoverningBodyAndTerm(ctx context.Context, governingBodyID int64, termNumber int) (*models.Election, error) {
	query := `
		SELECT id, governing_body_id, term_number, election_date, election_type
		FROM elections
		WHERE governing_body_id = $1 AND term_number = $2
	`
	var e models.Election
	err := s.q(ctx).QueryRowContext(ctx, query, governingBodyID, termNumber).
		Scan(&e.ID, &e.GoverningBodyID, &e.TermNumber, &e.ElectionDate, &e.ElectionType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get election by term: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) ListByGoverningBody(ctx context.Context, governingBodyID int64) ([]*models.Election, error) {
	query := `
		SELECT id, governing_body_id, term_number, election_date, election_type
		FROM elections
		WHERE governing_body_id = $1
		ORDER BY election_date
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, governingBodyID)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	defer rows.Close()

	var out []*models.Election
	for rows.Next() {
		var e models.Election
		if err := rows.Scan(&e.ID, &e.GoverningBodyID, &e.TermNumber, &e.ElectionDate, &e.ElectionType); err != nil {
			return nil, fmt.Errorf("scan election: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate elections: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Create(ctx context.Context, e *models.Election) (*models.Election, error) {
	query := `
		INSERT INTO elections (governing_body_id, term_number, election_date, election_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	created := *e
	err := s.q(ctx).QueryRowContext(ctx, query,
		e.GoverningBodyID,
		e.TermNumber,
		e.ElectionDate,
		e.ElectionType,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert election: %w", err)
	}
	return &created, nil
}
