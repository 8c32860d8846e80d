// Package smri reads the house-of-councillors roster dataset published
// by SmartNews SMRI (giin.json): an array of arrays whose first row is
// the header and whose columns are positionally fixed.
package smri

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/polibase/polibase/internal/election/models"
)

// giin.json column indices.
const (
	idxName         = 0
	idxRealName     = 1
	idxProfileURL   = 2
	idxFurigana     = 3
	idxParty        = 4
	idxDistrict     = 5
	idxTermExpiry   = 6
	idxPhotoURL     = 7
	idxElectedYears = 8
	idxElectionCnt  = 9

	expectedFields = 14
)

const proportionalDistrict = "比例"

// DefaultURL is the published dataset location.
const DefaultURL = "https://raw.githubusercontent.com/smartnews-smri/house-of-councillors/main/data/giin.json"

// FileSource reads the roster from a local giin.json snapshot.
type FileSource struct {
	path   string
	logger *slog.Logger
}

func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

func (s *FileSource) FetchCouncillors(_ context.Context) ([]models.CouncillorRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open roster file: %w", err)
	}
	defer f.Close()
	return decodeRoster(f, s.logger)
}

// HTTPSource fetches the roster from the published dataset URL.
type HTTPSource struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewHTTPSource(url string, client *http.Client, logger *slog.Logger) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{url: url, client: client, logger: logger}
}

func (s *HTTPSource) FetchCouncillors(ctx context.Context) ([]models.CouncillorRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build roster request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch roster: unexpected status %d", resp.StatusCode)
	}
	return decodeRoster(resp.Body, s.logger)
}

// decodeRoster parses the header-plus-rows payload. Malformed rows are
// a recoverable per-row condition: logged and skipped, never fatal.
func decodeRoster(r io.Reader, logger *slog.Logger) ([]models.CouncillorRecord, error) {
	var raw [][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode roster json: %w", err)
	}
	if len(raw) < 2 {
		logger.Warn("roster has no data rows")
		return nil, nil
	}

	records := make([]models.CouncillorRecord, 0, len(raw)-1)
	for i, row := range raw[1:] {
		record, err := parseRow(row)
		if err != nil {
			logger.Warn("skipping malformed roster row",
				slog.Int("row", i+1), slog.String("error", err.Error()))
			continue
		}
		records = append(records, record)
	}
	logger.Info("parsed roster", slog.Int("councillors", len(records)))
	return records, nil
}

func parseRow(row []json.RawMessage) (models.CouncillorRecord, error) {
	if len(row) < expectedFields {
		return models.CouncillorRecord{}, fmt.Errorf("short row: %d fields, want %d", len(row), expectedFields)
	}

	name, err := stringField(row[idxName])
	if err != nil {
		return models.CouncillorRecord{}, fmt.Errorf("name: %w", err)
	}
	furigana, _ := stringField(row[idxFurigana])
	party, _ := stringField(row[idxParty])
	district, _ := stringField(row[idxDistrict])
	profileURL, _ := stringField(row[idxProfileURL])

	years, err := parseElectedYears(row[idxElectedYears])
	if err != nil {
		return models.CouncillorRecord{}, fmt.Errorf("elected years: %w", err)
	}
	count, err := intField(row[idxElectionCnt])
	if err != nil {
		return models.CouncillorRecord{}, fmt.Errorf("election count: %w", err)
	}

	return models.CouncillorRecord{
		Name:           strings.TrimSpace(name),
		Furigana:       strings.TrimSpace(furigana),
		PartyName:      strings.TrimSpace(party),
		DistrictName:   strings.TrimSpace(district),
		ElectedYears:   years,
		ElectionCount:  count,
		ProfileURL:     strings.TrimSpace(profileURL),
		IsProportional: strings.TrimSpace(district) == proportionalDistrict,
	}, nil
}

// parseElectedYears handles both encodings the feed uses: a
// comma-separated string ("2019, 2013") and a bare number. Years come
// back newest first.
func parseElectedYears(raw json.RawMessage) ([]int, error) {
	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return []int{asInt}, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err != nil {
		return nil, fmt.Errorf("unsupported value %s", string(raw))
	}
	asString = strings.TrimSpace(asString)
	if asString == "" {
		return nil, nil
	}

	var years []int
	for _, part := range strings.Split(asString, ",") {
		part = strings.TrimSpace(part)
		if year, err := strconv.Atoi(part); err == nil {
			years = append(years, year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func stringField(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	// Some columns occasionally hold numbers.
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("not a string: %s", string(raw))
}

func intField(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.Atoi(strings.TrimSpace(s))
	}
	return 0, fmt.Errorf("not a number: %s", string(raw))
}
