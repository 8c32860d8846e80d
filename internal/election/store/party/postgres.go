package party

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/pkg/platform/sentinel"
	txcontext "github.com/polibase/polibase/pkg/platform/tx"
)

// PostgresStore persists parties in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed party store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) GetByName(ctx context.Context, name string) (*models.PoliticalParty, error) {
	query := `
		SELECT id, name
		FROM political_parties
		WHERE name = $1
	`
	var p models.PoliticalParty
	err := s.q(ctx).QueryRowContext(ctx, query, name).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get party by name: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *models.PoliticalParty) (*models.PoliticalParty, error) {
	// Name uniqueness is enforced by the table; a concurrent first-sight
	// race resolves to ErrConflict and the caller re-reads.
	query := `
		INSERT INTO political_parties (name)
		VALUES ($1)
		RETURNING id
	`
	created := *p
	if err := s.q(ctx).QueryRowContext(ctx, query, p.Name).Scan(&created.ID); err != nil {
		return nil, fmt.Errorf("insert party: %w", err)
	}
	return &created, nil
}
