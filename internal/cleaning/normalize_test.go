package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims and lowercases", "  John DOE  ", "john doe"},
		{"collapses whitespace", "a   b\t\tc", "a b c"},
		{"strips unsafe characters", "hello!@#world", "helloworld"},
		{"keeps identifier punctuation", "item_1.2-b", "item_1.2-b"},
		{"keeps date separators", "15/01/2023", "15/01/2023"},
		{"keeps time separators", "10:30:00", "10:30:00"},
		{"keeps commas", "doe, john", "doe, john"},
		{"strips non-ascii", "café", "caf"},
		{"empty stays empty", "", ""},
		{"only unsafe becomes empty", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeString(tt.input))
		})
	}
}

func TestNormalizeStringIdempotent(t *testing.T) {
	inputs := []string{"  John DOE  ", "a   b", "café", "15/01/2023"}
	for _, in := range inputs {
		once := NormalizeString(in)
		assert.Equal(t, once, NormalizeString(once))
	}
}
