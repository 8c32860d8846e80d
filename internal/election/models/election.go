package models

import (
	"fmt"
	"time"
)

// Election types. The values are the official Japanese election names and are
// persisted as-is.
const (
	ElectionTypeGeneral     = "衆議院議員総選挙"
	ElectionTypeCouncillors = "参議院議員通常選挙"
)

// Election identifies one election of a governing body. Unique per
// (governing body, term number); term numbers order elections within a body.
type Election struct {
	ID              int64
	GoverningBodyID int64
	TermNumber      int
	ElectionDate    time.Time
	ElectionType    string
}

func (e *Election) String() string {
	return fmt.Sprintf("第%d回 (%s)", e.TermNumber, e.ElectionDate.Format("2006-01-02"))
}

// IsHalfRenewal reports whether the election belongs to the fixed-term
// chamber that renews half its seats per election. Seat tenure for such
// chambers is computed against same-parity term numbers only.
func (e *Election) IsHalfRenewal() bool {
	return e.ElectionType == ElectionTypeCouncillors
}
