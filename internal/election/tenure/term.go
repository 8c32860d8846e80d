// Package tenure derives legislative-body seat tenures from election
// results: the seat starts at the election date and ends the day before
// the chamber's next renewal.
package tenure

import (
	"sort"
	"time"

	"github.com/polibase/polibase/internal/election/models"
)

// CalculateEndDate returns the day before the target seat's next
// renewal, or nil when that election is not yet recorded.
//
// 衆議院 seats end whenever the chamber is newly elected, so the next
// same-chamber election bounds them. 参議院 renews half its seats per
// election, so only elections of the same term parity renew the target
// seat.
func CalculateEndDate(target *models.Election, sameChamber []*models.Election) *time.Time {
	if target.IsHalfRenewal() {
		parity := target.TermNumber % 2
		var filtered []*models.Election
		for _, e := range sameChamber {
			if e.TermNumber%2 == parity {
				filtered = append(filtered, e)
			}
		}
		return nextElectionBound(target.TermNumber, filtered)
	}
	return nextElectionBound(target.TermNumber, sameChamber)
}

// nextElectionBound orders elections by date, finds the target term and
// returns the following election's date minus one day.
func nextElectionBound(termNumber int, elections []*models.Election) *time.Time {
	ordered := make([]*models.Election, len(elections))
	copy(ordered, elections)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ElectionDate.Before(ordered[j].ElectionDate)
	})

	for i, e := range ordered {
		if e.TermNumber == termNumber {
			if i+1 < len(ordered) {
				end := ordered[i+1].ElectionDate.AddDate(0, 0, -1)
				return &end
			}
			return nil
		}
	}
	return nil
}
