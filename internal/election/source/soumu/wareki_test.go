package soumu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWarekiDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"reiwa full-width", "令和６年１０月２７日執行", time.Date(2024, 10, 27, 0, 0, 0, 0, time.UTC)},
		{"reiwa half-width", "令和4年7月10日執行", time.Date(2022, 7, 10, 0, 0, 0, 0, time.UTC)},
		{"heisei", "平成29年10月22日", time.Date(2017, 10, 22, 0, 0, 0, 0, time.UTC)},
		{"showa", "昭和61年7月6日", time.Date(1986, 7, 6, 0, 0, 0, 0, time.UTC)},
		{"embedded in text", "第50回衆議院議員総選挙（令和６年１０月２７日執行）", time.Date(2024, 10, 27, 0, 0, 0, 0, time.UTC)},
		{"no date", "得票数一覧", time.Time{}},
		{"empty", "", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseWarekiDate(tt.input))
		})
	}
}

func TestZenToHan(t *testing.T) {
	assert.Equal(t, "123,456", zenToHan("１２３,４５６"))
	assert.Equal(t, "abc", zenToHan("abc"))
}
