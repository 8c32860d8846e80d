package soumu

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/polibase/polibase/internal/election/models"
)

// prefectureNames in JIS code order; prefecture codes are 1-based
// indices into this list.
var prefectureNames = []string{
	"北海道", "青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県", "岐阜県",
	"静岡県", "愛知県", "三重県", "滋賀県", "京都府", "大阪府", "兵庫県",
	"奈良県", "和歌山県", "鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県", "福岡県", "佐賀県", "長崎県",
	"熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県",
}

// maxConcurrentDownloads bounds the per-prefecture sheet fan-out.
const maxConcurrentDownloads = 4

// totalRowLabels mark the per-district vote total row.
var totalRowLabels = map[string]bool{"合計": true, "計": true, "合　計": true}

// ConstituencySource serves constituency candidate results from
// per-prefecture CSV exports of the published sheets. The URL template
// takes the election number and the two-digit prefecture code, e.g.
// "https://example.com/shugiin%d/pref_%02d.csv".
type ConstituencySource struct {
	urlTemplate string
	fetcher     *Fetcher
	logger      *slog.Logger
}

func NewConstituencySource(urlTemplate string, fetcher *Fetcher, logger *slog.Logger) *ConstituencySource {
	return &ConstituencySource{urlTemplate: urlTemplate, fetcher: fetcher, logger: logger}
}

// FetchCandidates downloads every prefecture's export concurrently and
// concatenates the parsed candidates. A missing prefecture export is a
// warning, not a failure; only transport-level errors abort the fetch.
func (s *ConstituencySource) FetchCandidates(ctx context.Context, electionNumber int) (*models.ElectionInfo, []models.CandidateRecord, error) {
	var (
		mu     sync.Mutex
		byPref = make(map[int][]models.CandidateRecord)
		info   *models.ElectionInfo
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDownloads)
	for code := range prefectureNames {
		prefCode := code + 1
		g.Go(func() error {
			url := fmt.Sprintf(s.urlTemplate, electionNumber, prefCode)
			body, err := s.fetcher.Get(ctx, url)
			if err != nil {
				s.logger.Warn("prefecture sheet unavailable",
					slog.Int("prefecture", prefCode), slog.String("error", err.Error()))
				return nil
			}
			sheetInfo, candidates, err := parseDistrictSheets(body)
			if err != nil {
				s.logger.Warn("prefecture sheet unparsable",
					slog.Int("prefecture", prefCode), slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			byPref[prefCode] = candidates
			if info == nil && sheetInfo != nil {
				info = sheetInfo
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("fetch constituency sheets: %w", err)
	}

	codes := make([]int, 0, len(byPref))
	for code := range byPref {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	var all []models.CandidateRecord
	for _, code := range codes {
		all = append(all, byPref[code]...)
	}
	s.logger.Info("fetched constituency candidates",
		slog.Int("election_number", electionNumber),
		slog.Int("prefectures", len(byPref)),
		slog.Int("candidates", len(all)))
	return info, all, nil
}

// parseDistrictSheets reads one prefecture export. Each district sheet
// is separated by a blank line; within a sheet:
//
//	row 0: election date header (wareki)
//	row 1: title
//	row 2: district name
//	row 3: candidate names, one per column
//	row 4: party names aligned under the candidates
//	row 5+: per-municipality votes, ending in the total row
func parseDistrictSheets(body []byte) (*models.ElectionInfo, []models.CandidateRecord, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}

	var (
		info *models.ElectionInfo
		all  []models.CandidateRecord
	)
	for _, sheet := range splitSheets(records) {
		sheetInfo, candidates := parseDistrictSheet(sheet)
		if info == nil && sheetInfo != nil {
			info = sheetInfo
		}
		all = append(all, candidates...)
	}
	return info, all, nil
}

// splitSheets groups rows into sheets at blank rows.
func splitSheets(records [][]string) [][][]string {
	var sheets [][][]string
	var current [][]string
	for _, row := range records {
		if isBlankRow(row) {
			if len(current) > 0 {
				sheets = append(sheets, current)
				current = nil
			}
			continue
		}
		current = append(current, row)
	}
	if len(current) > 0 {
		sheets = append(sheets, current)
	}
	return sheets
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseDistrictSheet(rows [][]string) (*models.ElectionInfo, []models.CandidateRecord) {
	if len(rows) < 5 {
		return nil, nil
	}

	var info *models.ElectionInfo
	if date := parseWarekiDate(firstCell(rows[0])); !date.IsZero() {
		info = &models.ElectionInfo{ElectionDate: date}
	}

	district := ""
	for _, cell := range rows[2] {
		if v := strings.TrimSpace(cell); v != "" {
			district = zenToHan(v)
			break
		}
	}
	if district == "" {
		return info, nil
	}
	prefecture := extractPrefecture(district)

	nameRow, partyRow := rows[3], rows[4]
	totalRow := findTotalRow(rows)

	var candidates []models.CandidateRecord
	for col, cell := range nameRow {
		name := strings.TrimSpace(cell)
		if name == "" || isHeaderCell(name) {
			continue
		}
		party := ""
		if col < len(partyRow) {
			party = strings.TrimSpace(partyRow[col])
		}
		votes := 0
		if totalRow >= 0 && col < len(rows[totalRow]) {
			votes = parseVotes(rows[totalRow][col])
		} else {
			votes = sumVotes(rows, col)
		}
		candidates = append(candidates, models.CandidateRecord{
			Name:         name,
			PartyName:    party,
			DistrictName: district,
			Prefecture:   prefecture,
			TotalVotes:   votes,
		})
	}

	// Ranked by votes; the top candidate with a positive count won the
	// single seat.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].TotalVotes > candidates[j].TotalVotes
	})
	for i := range candidates {
		candidates[i].Rank = i + 1
		candidates[i].IsElected = i == 0 && candidates[i].TotalVotes > 0
	}
	return info, candidates
}

func firstCell(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return strings.TrimSpace(row[0])
}

func findTotalRow(rows [][]string) int {
	for i := len(rows) - 1; i > 4; i-- {
		row := rows[i]
		if len(row) > 0 && totalRowLabels[strings.TrimSpace(row[0])] {
			return i
		}
		if len(row) > 1 && totalRowLabels[strings.TrimSpace(row[1])] {
			return i
		}
	}
	return -1
}

func sumVotes(rows [][]string, col int) int {
	total := 0
	for _, row := range rows[5:] {
		if col < len(row) {
			total += parseVotes(row[col])
		}
	}
	return total
}

func parseVotes(cell string) int {
	s := zenToHan(strings.TrimSpace(cell))
	s = strings.NewReplacer(",", "", "，", "", " ", "", "　", "").Replace(s)
	if s == "" {
		return 0
	}
	// Exports of numeric cells sometimes carry a decimal point.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func extractPrefecture(district string) string {
	for _, pref := range prefectureNames {
		if strings.HasPrefix(district, pref) {
			return pref
		}
	}
	return ""
}

func isHeaderCell(v string) bool {
	switch v {
	case "候補者名", "氏名", "市区町村名", "市区町村":
		return true
	}
	return false
}
