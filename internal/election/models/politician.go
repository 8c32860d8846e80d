package models

// Politician is the identity entity of the graph. There is no natural
// external key: identity is established only through name matching plus
// party-affiliation history, so Name is always stored normalized
// (see service.NormalizeName).
type Politician struct {
	ID         int64
	Name       string
	Prefecture string
	District   string
	// PartyID is the denormalized current party. Matching prefers
	// PartyMembershipHistory and reads this only for politicians that
	// have no history row at the as-of date.
	PartyID    *int64
	ProfileURL string
}

// PoliticalParty is keyed by name and created lazily on first encounter.
type PoliticalParty struct {
	ID   int64
	Name string
}
