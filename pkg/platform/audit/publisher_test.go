package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "github.com/polibase/polibase/pkg/platform/audit"
	memorystore "github.com/polibase/polibase/pkg/platform/audit/store/memory"
	"github.com/polibase/polibase/pkg/requestcontext"
)

func TestEmitFillsDefaults(t *testing.T) {
	store := memorystore.New()
	publisher := audit.NewPublisher(store)

	ctx := requestcontext.WithRequestID(context.Background(), "req-42")
	publisher.Emit(ctx, audit.Event{
		Action:     audit.ActionGeneralImport,
		Outcome:    audit.OutcomeCompleted,
		TermNumber: 50,
		Summary:    map[string]int{"election_members_created": 465},
	})

	events, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "req-42", e.RequestID)
	assert.Equal(t, audit.ActionGeneralImport, e.Action)
	assert.Equal(t, 465, e.Summary["election_members_created"])
}

func TestEmitSwallowsStoreFailure(t *testing.T) {
	publisher := audit.NewPublisher(failingStore{})

	// Must not panic or propagate: audit is best-effort.
	publisher.Emit(context.Background(), audit.Event{
		Action:  audit.ActionGroupLinkage,
		Outcome: audit.OutcomeFailed,
	})
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	store := memorystore.New()
	publisher := audit.NewPublisher(store)

	publisher.Emit(context.Background(), audit.Event{Action: audit.ActionCouncillorsImport})
	publisher.Emit(context.Background(), audit.Event{Action: audit.ActionTenurePopulation})

	events, err := store.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionTenurePopulation, events[0].Action)
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("outage")
}

func (failingStore) ListRecent(context.Context, int) ([]audit.Event, error) {
	return nil, errors.New("outage")
}
