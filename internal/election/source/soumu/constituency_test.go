package soumu

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokyoSheet = `令和３年１０月３１日執行,,,
衆議院議員総選挙　候補者別得票数,,,
東京都第１区,,,
市区町村名,山田　太郎,佐藤　花子,鈴木　一郎
,自由民主党,立憲民主党,無所属
千代田区,２００００,15000,3000
港区,30000,25000,4000
合計,５００００,40000,7000
`

func TestParseDistrictSheet(t *testing.T) {
	info, candidates, err := parseDistrictSheets([]byte(tokyoSheet))
	require.NoError(t, err)

	require.NotNil(t, info)
	assert.Equal(t, time.Date(2021, 10, 31, 0, 0, 0, 0, time.UTC), info.ElectionDate)

	require.Len(t, candidates, 3)

	winner := candidates[0]
	assert.Equal(t, "山田　太郎", winner.Name)
	assert.Equal(t, "自由民主党", winner.PartyName)
	assert.Equal(t, "東京都第1区", winner.DistrictName)
	assert.Equal(t, "東京都", winner.Prefecture)
	assert.Equal(t, 50000, winner.TotalVotes)
	assert.Equal(t, 1, winner.Rank)
	assert.True(t, winner.IsElected)

	second := candidates[1]
	assert.Equal(t, "佐藤　花子", second.Name)
	assert.Equal(t, 2, second.Rank)
	assert.False(t, second.IsElected)

	assert.Equal(t, 3, candidates[2].Rank)
}

func TestParseDistrictSheetWithoutTotalRowSumsData(t *testing.T) {
	sheet := `令和３年１０月３１日執行,,
タイトル,,
大阪府第３区,,
市区町村名,高橋　次郎,田中　三郎
,公明党,日本共産党
堺区,10000,8000
北区,12000,9000
`
	_, candidates, err := parseDistrictSheets([]byte(sheet))
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, 22000, candidates[0].TotalVotes)
	assert.Equal(t, 17000, candidates[1].TotalVotes)
}

func TestParseMultipleSheetsSplitByBlankLine(t *testing.T) {
	multi := tokyoSheet + ",,,\n" + `令和３年１０月３１日執行,,
タイトル,,
東京都第２区,,
市区町村名,中村　四郎,
,自由民主党,
中央区,9000,
合計,9000,
`
	_, candidates, err := parseDistrictSheets([]byte(multi))
	require.NoError(t, err)
	assert.Len(t, candidates, 4)
}

func TestConstituencySourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Serve data for prefecture 13 only; everything else 404s.
		if r.URL.Path == "/shugiin49/pref_13.csv" {
			fmt.Fprint(w, tokyoSheet)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), nil, slog.Default())
	src := NewConstituencySource(server.URL+"/shugiin%d/pref_%02d.csv", fetcher, slog.Default())

	info, candidates, err := src.FetchCandidates(context.Background(), 49)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Len(t, candidates, 3)
}
