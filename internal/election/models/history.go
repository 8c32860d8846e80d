package models

import "time"

// PartyMembershipHistory is a temporal interval of a politician's party
// affiliation. A nil EndDate means the membership is current. At most one
// open interval may exist per politician at any instant; the history stores
// validate this at create time.
type PartyMembershipHistory struct {
	ID           int64
	PoliticianID int64
	PartyID      int64
	StartDate    time.Time
	EndDate      *time.Time
}

// ActiveAt reports whether the interval covers the given date.
func (h *PartyMembershipHistory) ActiveAt(at time.Time) bool {
	if at.Before(h.StartDate) {
		return false
	}
	return h.EndDate == nil || !at.After(*h.EndDate)
}
