// Package soumu reads the government election-result sheets published
// per election on soumu.go.jp, exported per district as CSV. Headers
// carry wareki dates with full-width digits; votes carry full-width
// digits and grouping commas.
package soumu

import (
	"regexp"
	"strings"
	"time"
)

// Era base years: era year 1 maps to base+1.
var warekiBase = map[string]int{
	"令和": 2018,
	"平成": 1988,
	"昭和": 1925,
}

var warekiPattern = regexp.MustCompile(`(令和|平成|昭和)(\d+)年(\d+)月(\d+)日`)

var zenToHanTable = strings.NewReplacer(
	"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
	"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
)

// zenToHan converts full-width digits to ASCII.
func zenToHan(s string) string {
	return zenToHanTable.Replace(s)
}

// parseWarekiDate extracts a wareki date from header text, e.g.
// "令和６年１０月２７日執行" → 2024-10-27. Returns the zero time when
// no date is present.
func parseWarekiDate(text string) time.Time {
	m := warekiPattern.FindStringSubmatch(zenToHan(text))
	if m == nil {
		return time.Time{}
	}
	base := warekiBase[m[1]]
	year := base + atoi(m[2])
	return time.Date(year, time.Month(atoi(m[3])), atoi(m[4]), 0, 0, 0, 0, time.UTC)
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
