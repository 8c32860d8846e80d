package models

import "time"

// ParliamentaryGroup is a voting bloc within a governing body. PartyID links
// the group to the party whose elected members are auto-enrolled; it is nil
// for groups with no single backing party.
type ParliamentaryGroup struct {
	ID              int64
	Name            string
	GoverningBodyID int64
	PartyID         *int64
	IsActive        bool
}

// ParliamentaryGroupMembership is a temporal interval of group membership,
// idempotent on (politician, group, start date).
type ParliamentaryGroupMembership struct {
	ID           int64
	PoliticianID int64
	GroupID      int64
	StartDate    time.Time
	EndDate      *time.Time
}

// Conference is a legislative body (chamber, council, committee).
type Conference struct {
	ID              int64
	Name            string
	GoverningBodyID int64
}

// ConferenceMember is a seat-tenure interval in a conference, idempotent on
// (politician, conference, start date). EndDate is derived from the next
// election of the chamber and is nil while that election is unknown.
type ConferenceMember struct {
	ID           int64
	PoliticianID int64
	ConferenceID int64
	StartDate    time.Time
	EndDate      *time.Time
}
