package models

import "time"

// District-result codes carried by the proportional source. A proportional
// candidate who also ran in a district reports whether they won or lost it;
// pure list candidates carry the empty string.
const (
	SMDResultWon  = "当"
	SMDResultLost = "落"
)

// ElectionInfo is source-level metadata about one election.
type ElectionInfo struct {
	ElectionDate time.Time
}

// CandidateRecord is one constituency candidate as parsed from the scraped
// government result sheets.
type CandidateRecord struct {
	Name         string
	PartyName    string
	DistrictName string
	Prefecture   string
	TotalVotes   int
	Rank         int
	IsElected    bool
}

// ProportionalCandidateRecord is one party-list candidate. SMDResult is the
// district-result code above and drives revival classification.
type ProportionalCandidateRecord struct {
	Name      string
	PartyName string
	BlockName string
	ListOrder int
	SMDResult string
	IsElected bool
}

// CouncillorRecord is one sitting councillor from the header-plus-rows feed.
// ElectedYears lists every year the member won a seat, newest first.
type CouncillorRecord struct {
	Name           string
	Furigana       string
	PartyName      string
	DistrictName   string
	ElectedYears   []int
	ElectionCount  int
	ProfileURL     string
	IsProportional bool
}
