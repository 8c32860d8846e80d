package soumu

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/polibase/polibase/internal/election/models"
)

// proportionalBlocks are the eleven 衆議院 proportional blocks.
var proportionalBlocks = map[string]bool{
	"北海道": true, "東北": true, "北関東": true, "南関東": true,
	"東京": true, "北陸信越": true, "東海": true, "近畿": true,
	"中国": true, "四国": true, "九州": true,
}

var blockPattern = regexp.MustCompile(
	`(北海道|東北|北関東|南関東|東京|北陸信越|東海|近畿|中国|四国|九州)\s*(?:ブロック|都?選挙区)`)

// Column offsets of the up-to-four party groups laid side by side in a
// block section, and the field positions within one group.
var partyGroupOffsets = []int{0, 7, 14, 21}

const (
	colListOrder = 0
	colName      = 1
	colParty     = 2
	colSMDResult = 5
)

// ProportionalSheetSource serves proportional-block results from the
// published sheet's CSV export. The URL template takes the election
// number, e.g. "https://example.com/shugiin%d/proportional.csv".
type ProportionalSheetSource struct {
	urlTemplate string
	fetcher     *Fetcher
	logger      *slog.Logger
}

func NewProportionalSheetSource(urlTemplate string, fetcher *Fetcher, logger *slog.Logger) *ProportionalSheetSource {
	return &ProportionalSheetSource{urlTemplate: urlTemplate, fetcher: fetcher, logger: logger}
}

func (s *ProportionalSheetSource) FetchProportional(ctx context.Context, electionNumber int) (*models.ElectionInfo, []models.ProportionalCandidateRecord, error) {
	url := fmt.Sprintf(s.urlTemplate, electionNumber)
	body, err := s.fetcher.Get(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch proportional sheet: %w", err)
	}

	info, candidates, err := parseProportionalSheet(body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse proportional sheet: %w", err)
	}
	s.logger.Info("fetched proportional candidates",
		slog.Int("election_number", electionNumber),
		slog.Int("candidates", len(candidates)))
	return info, candidates, nil
}

// parseProportionalSheet walks the block sections of the export. Each
// section holds up to four party groups side by side:
//
//	section row: block name ("近畿ブロック" or "近畿選挙区")
//	+2: party names at group offset +2
//	+5: per-party winner counts at group offset +2
//	+8 onward: candidate rows (list order, name, .., district result)
//
// The first winnersCount candidates of each party list are the elected
// ones.
func parseProportionalSheet(body []byte) (*models.ElectionInfo, []models.ProportionalCandidateRecord, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}

	var info *models.ElectionInfo
	for _, row := range rows {
		if date := parseWarekiDate(firstCell(row)); !date.IsZero() {
			info = &models.ElectionInfo{ElectionDate: date}
			break
		}
	}

	var sectionStarts []int
	for i, row := range rows {
		if strings.Contains(firstCell(row), "選挙区") || strings.Contains(firstCell(row), "ブロック") {
			sectionStarts = append(sectionStarts, i)
		}
	}

	var all []models.ProportionalCandidateRecord
	for idx, start := range sectionStarts {
		end := len(rows)
		if idx+1 < len(sectionStarts) {
			end = sectionStarts[idx+1]
		}
		all = append(all, parseBlockSection(rows, start, end)...)
	}
	return info, all, nil
}

func parseBlockSection(rows [][]string, start, end int) []models.ProportionalCandidateRecord {
	m := blockPattern.FindStringSubmatch(zenToHan(firstCell(rows[start])))
	if m == nil {
		return nil
	}
	blockName := m[1]
	if !proportionalBlocks[blockName] {
		return nil
	}

	partyRowIdx := start + 2
	winnersRowIdx := start + 5
	dataStart := start + 8
	if partyRowIdx >= end || dataStart >= end {
		return nil
	}
	partyRow := rows[partyRowIdx]
	var winnersRow []string
	if winnersRowIdx < end {
		winnersRow = rows[winnersRowIdx]
	}

	var all []models.ProportionalCandidateRecord
	for _, offset := range partyGroupOffsets {
		partyCol := offset + colParty
		if partyCol >= len(partyRow) {
			continue
		}
		partyName := strings.TrimSpace(partyRow[partyCol])
		if partyName == "" || partyName == "政党等名" {
			continue
		}

		winners := 0
		if partyCol < len(winnersRow) {
			winners = parseWinnersCount(winnersRow[partyCol])
		}

		var list []models.ProportionalCandidateRecord
		for r := dataStart; r < end && r < len(rows); r++ {
			row := rows[r]
			nameCol := offset + colName
			if nameCol >= len(row) {
				continue
			}
			name := strings.TrimSpace(row[nameCol])
			if name == "" || name == "氏名" {
				continue
			}

			order := 0
			if c := offset + colListOrder; c < len(row) {
				order = parseVotes(row[c])
			}
			smd := ""
			if c := offset + colSMDResult; c < len(row) {
				v := strings.TrimSpace(row[c])
				if v == models.SMDResultWon || v == models.SMDResultLost {
					smd = v
				}
			}

			list = append(list, models.ProportionalCandidateRecord{
				Name:      name,
				PartyName: partyName,
				BlockName: blockName,
				ListOrder: order,
				SMDResult: smd,
			})
		}

		for i := range list {
			list[i].IsElected = i < winners
		}
		all = append(all, list...)
	}
	return all
}

// parseWinnersCount pulls the first number out of a winner-count cell
// ("３人" → 3).
func parseWinnersCount(cell string) int {
	s := zenToHan(strings.TrimSpace(cell))
	digits := strings.Builder{}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		} else if digits.Len() > 0 {
			break
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, _ := strconv.Atoi(digits.String())
	return n
}
