package politician

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/polibase/polibase/internal/election/models"
	"github.com/polibase/polibase/pkg/platform/sentinel"
	txcontext "github.com/polibase/polibase/pkg/platform/tx"
)

// PostgresStore persists politicians in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed politician store.
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

const politicianColumns = `id, name, prefecture, district, political_party_id, profile_url`

func (s *PostgresStore) SearchByName(ctx context.Context, name string) ([]*models.Politician, error) {
	query := `
		SELECT ` + politicianColumns + `
		FROM politicians
		WHERE name = $1
		ORDER BY id
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("search politicians by name: %w", err)
	}
	defer rows.Close()
	return scanPoliticians(rows)
}

func (s *PostgresStore) GetByIDs(ctx context.Context, ids []int64) ([]*models.Politician, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + politicianColumns + `
		FROM politicians
		WHERE id = ANY($1)
		ORDER BY id
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get politicians by ids: %w", err)
	}
	defer rows.Close()
	return scanPoliticians(rows)
}

func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*models.Politician, error) {
	query := `
		SELECT ` + politicianColumns + `
		FROM politicians
		WHERE id = $1
	`
	p, err := scanPolitician(s.q(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get politician: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Politician) (*models.Politician, error) {
	query := `
		INSERT INTO politicians (name, prefecture, district, political_party_id, profile_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	created := *p
	err := s.q(ctx).QueryRowContext(ctx, query,
		p.Name,
		p.Prefecture,
		p.District,
		p.PartyID,
		p.ProfileURL,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert politician: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Politician) error {
	query := `
		UPDATE politicians
		SET name = $2, prefecture = $3, district = $4, political_party_id = $5, profile_url = $6
		WHERE id = $1
	`
	res, err := s.q(ctx).ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Prefecture,
		p.District,
		p.PartyID,
		p.ProfileURL,
	)
	if err != nil {
		return fmt.Errorf("update politician: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update politician rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolitician(row rowScanner) (*models.Politician, error) {
	var p models.Politician
	if err := row.Scan(&p.ID, &p.Name, &p.Prefecture, &p.District, &p.PartyID, &p.ProfileURL); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPoliticians(rows *sql.Rows) ([]*models.Politician, error) {
	var out []*models.Politician
	for rows.Next() {
		p, err := scanPolitician(rows)
		if err != nil {
			return nil, fmt.Errorf("scan politician: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate politicians: %w", err)
	}
	return out, nil
}
