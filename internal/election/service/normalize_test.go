package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"half-width space", "山田 太郎", "山田太郎"},
		{"full-width space", "山田　太郎", "山田太郎"},
		{"mixed spaces", "山田 　太郎 ", "山田太郎"},
		{"no spaces", "山田太郎", "山田太郎"},
		{"empty", "", ""},
		{"only spaces", " 　 ", ""},
		{"latin name", "John Smith", "JohnSmith"},
		{"other whitespace preserved", "山田\t太郎", "山田\t太郎"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}
