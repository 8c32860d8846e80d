// Package group persists parliamentary groups and their membership
// intervals.
package group

import (
	"context"
	"time"

	"github.com/polibase/polibase/internal/election/models"
)

// Store is the parliamentary-group repository, covering both groups and
// their memberships; the linker always touches the two together.
type Store interface {
	// ListByGoverningBody returns the body's groups, restricted to active
	// ones when activeOnly is set.
	ListByGoverningBody(ctx context.Context, governingBodyID int64, activeOnly bool) ([]*models.ParliamentaryGroup, error)
	CreateGroup(ctx context.Context, g *models.ParliamentaryGroup) (*models.ParliamentaryGroup, error)
	// ListActiveMembershipsByGroup returns memberships of the group whose
	// interval covers asOf.
	ListActiveMembershipsByGroup(ctx context.Context, groupID int64, asOf time.Time) ([]*models.ParliamentaryGroupMembership, error)
	// CreateMembership opens a new membership interval at startDate. The
	// (politician, group, startDate) triple is the idempotency key;
	// callers check it before writing.
	CreateMembership(ctx context.Context, politicianID, groupID int64, startDate time.Time) (*models.ParliamentaryGroupMembership, error)
}
