package filter_test

import (
	"testing"

	"github.com/lodestone-ai/lodestone/pkg/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantNil    bool
		wantRaw    bool
		wantFields map[string]any
	}{
		{
			name:    "empty input",
			raw:     "",
			wantNil: true,
		},
		{
			name:    "empty object",
			raw:     "{}",
			wantNil: true,
		},
		{
			name:    "whitespace-only object",
			raw:     " { } ",
			wantNil: true,
		},
		{
			name:       "simple equality",
			raw:        `{"category":"bio"}`,
			wantFields: map[string]any{"category": "bio"},
		},
		{
			name:       "operator constraint",
			raw:        `{"price":{"$gt":5}}`,
			wantFields: map[string]any{"price": map[string]any{"$gt": float64(5)}},
		},
		{
			name:    "plain text falls through as raw",
			raw:     "not json",
			wantRaw: true,
		},
		{
			name: "single-quoted keys are repaired",
			raw:  `{'category': 'bio'}`,
			// jsonrepair rewrites the quoting; the result is structured.
			wantFields: map[string]any{"category": "bio"},
		},
		{
			name:       "trailing comma is repaired",
			raw:        `{"category":"bio",}`,
			wantFields: map[string]any{"category": "bio"},
		},
		{
			name:    "json array is not a structured filter",
			raw:     `[1,2,3]`,
			wantRaw: true,
		},
		{
			name:    "json scalar is not a structured filter",
			raw:     `42`,
			wantRaw: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := filter.Parse(tt.raw)

			if tt.wantNil {
				assert.Nil(t, f)
				return
			}
			require.NotNil(t, f)

			if tt.wantRaw {
				assert.True(t, f.IsRaw())
				assert.Equal(t, tt.raw, f.Raw)
				return
			}
			assert.False(t, f.IsRaw())
			assert.Equal(t, tt.wantFields, f.Fields)
		})
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		`{"unterminated`,
		"\x00\x01",
		`{{{{`,
		`null`,
	}
	for _, raw := range inputs {
		assert.NotPanics(t, func() { filter.Parse(raw) }, "input %q", raw)
	}
}

func TestMatches(t *testing.T) {
	metadata := map[string]any{
		"category": "bio",
		"year":     float64(2021),
		"source":   "textbook",
	}

	tests := []struct {
		name   string
		raw    string
		expect bool
	}{
		{"equality hit", `{"category":"bio"}`, true},
		{"equality miss", `{"category":"physics"}`, false},
		{"missing field", `{"author":"darwin"}`, false},
		{"numeric equality across types", `{"year":2021}`, true},
		{"$eq", `{"category":{"$eq":"bio"}}`, true},
		{"$ne hit", `{"category":{"$ne":"physics"}}`, true},
		{"$ne miss", `{"category":{"$ne":"bio"}}`, false},
		{"$gt hit", `{"year":{"$gt":2000}}`, true},
		{"$gt miss", `{"year":{"$gt":2021}}`, false},
		{"$gte boundary", `{"year":{"$gte":2021}}`, true},
		{"$lt hit", `{"year":{"$lt":2022}}`, true},
		{"$lte boundary", `{"year":{"$lte":2021}}`, true},
		{"$in hit", `{"category":{"$in":["bio","chem"]}}`, true},
		{"$in miss", `{"category":{"$in":["chem","physics"]}}`, false},
		{"combined operators", `{"year":{"$gte":2020,"$lt":2022}}`, true},
		{"multiple fields all match", `{"category":"bio","source":"textbook"}`, true},
		{"multiple fields one misses", `{"category":"bio","source":"paper"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := filter.Parse(tt.raw)
			require.NotNil(t, f)
			require.False(t, f.IsRaw())
			assert.Equal(t, tt.expect, f.Matches(metadata))
		})
	}
}

func TestMatchesNilFilter(t *testing.T) {
	var f *filter.Filter
	assert.True(t, f.Matches(map[string]any{"anything": 1}))
}
