// Package postgres persists audit events in the audit_events table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	audit "github.com/polibase/polibase/pkg/platform/audit"
	txcontext "github.com/polibase/polibase/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts one event. Duplicate event IDs are ignored so retried
// handlers do not double-record a run.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	summary, err := json.Marshal(event.Summary)
	if err != nil {
		return fmt.Errorf("marshal audit summary: %w", err)
	}

	query := `
		INSERT INTO audit_events (id, action, outcome, term_number, governing_body_id, dry_run, request_id, summary, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.q(ctx).ExecContext(ctx, query,
		event.ID,
		string(event.Action),
		string(event.Outcome),
		event.TermNumber,
		event.GoverningBodyID,
		event.DryRun,
		event.RequestID,
		summary,
		event.Detail,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns the most recent events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT id, action, outcome, term_number, governing_body_id, dry_run, request_id, summary, detail, created_at
		FROM audit_events
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e       audit.Event
			id      uuid.UUID
			summary []byte
		)
		if err := rows.Scan(&id, &e.Action, &e.Outcome, &e.TermNumber, &e.GoverningBodyID, &e.DryRun, &e.RequestID, &summary, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.ID = id
		if len(summary) > 0 {
			if err := json.Unmarshal(summary, &e.Summary); err != nil {
				return nil, fmt.Errorf("unmarshal audit summary: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
