package models

import "slices"

// Election results. Persisted values are the Japanese terms used by the
// upstream sources.
const (
	ResultElected             = "当選"
	ResultLost                = "落選"
	ResultRunnerUp            = "次点"
	ResultElevated            = "繰上当選"
	ResultUncontested         = "無投票当選"
	ResultProportional        = "比例当選"
	ResultProportionalRevival = "比例復活"
)

// ValidResults is the closed result vocabulary.
var ValidResults = []string{
	ResultElected,
	ResultLost,
	ResultRunnerUp,
	ResultElevated,
	ResultUncontested,
	ResultProportional,
	ResultProportionalRevival,
}

// ElectedResults is the subset of results that grant a seat.
var ElectedResults = []string{
	ResultElected,
	ResultElevated,
	ResultUncontested,
	ResultProportional,
	ResultProportionalRevival,
}

// ProportionalResults is the subset owned by the proportional pipeline. Its
// idempotent reset deletes only these, preserving district rows.
var ProportionalResults = []string{
	ResultProportional,
	ResultProportionalRevival,
}

// ElectionMember records how one politician fared in one election. At most
// one row exists per (election, politician); the proportional pipeline
// updates the district row in place instead of inserting a second one.
type ElectionMember struct {
	ID           int64
	ElectionID   int64
	PoliticianID int64
	Result       string
	Votes        *int
	Rank         *int
}

// IsElected reports whether the result grants a seat.
func (m *ElectionMember) IsElected() bool {
	return slices.Contains(ElectedResults, m.Result)
}
