package soumu

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polibase/polibase/internal/election/models"
)

// proportionalSheet lays out one block section with two party groups at
// offsets 0 and 7.
func proportionalSheet() string {
	pad := func(cells ...string) string {
		row := make([]string, 14)
		copy(row, cells)
		return strings.Join(row, ",")
	}
	group := func(left, right []string) string {
		row := make([]string, 14)
		copy(row, left)
		copy(row[7:], right)
		return strings.Join(row, ",")
	}
	lines := []string{
		pad("令和３年１０月３１日執行"),
		pad("東京都選挙区"),
		pad(""),
		group([]string{"", "", "自由民主党"}, []string{"", "", "立憲民主党"}),
		pad(""),
		pad(""),
		group([]string{"", "", "２人"}, []string{"", "", "１人"}),
		pad(""),
		pad(""),
		group([]string{"1", "山田　太郎", "", "", "", "当", ""}, []string{"1", "高橋　五郎", "", "", "", "落", ""}),
		group([]string{"2", "佐藤　花子", "", "", "", "落", ""}, []string{"2", "田中　六郎", "", "", "", "", ""}),
		group([]string{"3", "鈴木　一郎", "", "", "", "", ""}, []string{}),
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestParseProportionalSheet(t *testing.T) {
	info, candidates, err := parseProportionalSheet([]byte(proportionalSheet()))
	require.NoError(t, err)

	require.NotNil(t, info)
	assert.Equal(t, time.Date(2021, 10, 31, 0, 0, 0, 0, time.UTC), info.ElectionDate)

	require.Len(t, candidates, 5)

	byName := make(map[string]models.ProportionalCandidateRecord)
	for _, c := range candidates {
		byName[c.Name] = c
	}

	yamada := byName["山田　太郎"]
	assert.Equal(t, "自由民主党", yamada.PartyName)
	assert.Equal(t, "東京", yamada.BlockName)
	assert.Equal(t, 1, yamada.ListOrder)
	assert.Equal(t, models.SMDResultWon, yamada.SMDResult)
	assert.True(t, yamada.IsElected)

	sato := byName["佐藤　花子"]
	assert.Equal(t, models.SMDResultLost, sato.SMDResult)
	assert.True(t, sato.IsElected) // two winners in the first group

	suzuki := byName["鈴木　一郎"]
	assert.Empty(t, suzuki.SMDResult)
	assert.False(t, suzuki.IsElected)

	takahashi := byName["高橋　五郎"]
	assert.Equal(t, "立憲民主党", takahashi.PartyName)
	assert.True(t, takahashi.IsElected) // one winner in the second group

	tanaka := byName["田中　六郎"]
	assert.False(t, tanaka.IsElected)
}

func TestProportionalSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/shugiin49/proportional.csv" {
			fmt.Fprint(w, proportionalSheet())
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), nil, slog.Default())
	src := NewProportionalSheetSource(server.URL+"/shugiin%d/proportional.csv", fetcher, slog.Default())

	info, candidates, err := src.FetchProportional(context.Background(), 49)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Len(t, candidates, 5)
}

func TestParseWinnersCount(t *testing.T) {
	assert.Equal(t, 3, parseWinnersCount("３人"))
	assert.Equal(t, 12, parseWinnersCount("12"))
	assert.Equal(t, 0, parseWinnersCount(""))
	assert.Equal(t, 0, parseWinnersCount("人"))
}
