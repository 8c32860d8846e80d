// Package audit captures pipeline runs as structured events so operators can
// answer "what ran, when, and what did it change" without grepping logs.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action identifies the operation that produced an event.
type Action string

const (
	ActionGeneralImport      Action = "general_import_run"
	ActionCouncillorsImport  Action = "councillors_import_run"
	ActionProportionalImport Action = "proportional_import_run"
	ActionGroupLinkage       Action = "group_linkage_run"
	ActionTenurePopulation   Action = "tenure_population_run"
)

// Outcome states how a run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// Event is one recorded pipeline run. Summary carries the run's counters
// (members created, skips, errors) keyed by the pipeline's own field names.
type Event struct {
	ID              uuid.UUID
	Action          Action
	Outcome         Outcome
	TermNumber      int
	GoverningBodyID int64
	DryRun          bool
	RequestID       string
	Summary         map[string]int
	Detail          string
	Timestamp       time.Time
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
