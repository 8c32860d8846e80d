package member

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

// PostgresStore persists election members in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed member store.
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

func (s *PostgresStore) ListByElection(ctx context.Context, electionID int64) ([]*models.ElectionMember, error) {
	query := `
		SELECT id, election_id, politician_id, result, votes, rank
		FROM election_members
		WHERE election_id = $1
		ORDER BY id
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, fmt.Errorf("list election members: %w", err)
	}
	defer rows.Close()

	var out []*models.ElectionMember
	for rows.Next() {
		var (
			m           models.ElectionMember
			votes, rank sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.ElectionID, &m.PoliticianID, &m.Result, &votes, &rank); err != nil {
			return nil, fmt.Errorf("scan election member: %w", err)
		}
		if votes.Valid {
			v := int(votes.Int64)
			m.Votes = &v
		}
		if rank.Valid {
			r := int(rank.Int64)
			m.Rank = &r
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate election members: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Create(ctx context.Context, m *models.ElectionMember) (*models.ElectionMember, error) {
	// (election, politician) uniqueness backs the pipeline's duplicate
	// guard; a conflicting insert means a second source row mapped to the
	// same politician.
	query := `
		INSERT INTO election_members (election_id, politician_id, result, votes, rank)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (election_id, politician_id) DO NOTHING
		RETURNING id
	`
	created := *m
	err := s.q(ctx).QueryRowContext(ctx, query,
		m.ElectionID,
		m.PoliticianID,
		m.Result,
		nullInt(m.Votes),
		nullInt(m.Rank),
	).Scan(&created.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert election member: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) Update(ctx context.Context, m *models.ElectionMember) error {
	query := `
		UPDATE election_members
		SET result = $2, votes = $3, rank = $4
		WHERE id = $1
	`
	res, err := s.q(ctx).ExecContext(ctx, query, m.ID, m.Result, nullInt(m.Votes), nullInt(m.Rank))
	if err != nil {
		return fmt.Errorf("update election member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update election member rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteByElection(ctx context.Context, electionID int64) (int, error) {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM election_members WHERE election_id = $1`, electionID)
	if err != nil {
		return 0, fmt.Errorf("delete election members: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete election members rows affected: %w", err)
	}
	return int(affected), nil
}

func (s *PostgresStore) DeleteByElectionAndResults(ctx context.Context, electionID int64, results []string) (int, error) {
	query := `
		DELETE FROM election_members
		WHERE election_id = $1 AND result = ANY($2)
	`
	res, err := s.q(ctx).ExecContext(ctx, query, electionID, pq.Array(results))
	if err != nil {
		return 0, fmt.Errorf("delete election members by results: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete election members rows affected: %w", err)
	}
	return int(affected), nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
