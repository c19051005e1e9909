package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2025-11-04", false},
		{" 2025-11-04 ", false},
		{"2025-02-30", true},
		{"11/04/2025", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			parsed, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "2025-11-04", FormatDate(parsed))
			assert.Equal(t, time.UTC, parsed.Location())
		})
	}
}

func TestMonthBounds(t *testing.T) {
	first, last, err := MonthBounds(2024, 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", FormatDate(first))
	assert.Equal(t, "2024-02-29", FormatDate(last))

	first, last, err = MonthBounds(2025, 12)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", FormatDate(first))
	assert.Equal(t, "2025-12-31", FormatDate(last))

	for _, month := range []int{0, 13, -1} {
		_, _, err := MonthBounds(2025, month)
		assert.ErrorIs(t, err, ErrInvalidMonth)
	}
}

func TestEnumerateDates(t *testing.T) {
	lower, upper, err := MonthBounds(2025, 11)
	require.NoError(t, err)

	tests := []struct {
		name     string
		from, to string
		expected []string
	}{
		{
			name:     "inside month inclusive",
			from:     "2025-11-04",
			to:       "2025-11-06",
			expected: []string{"2025-11-04", "2025-11-05", "2025-11-06"},
		},
		{
			name:     "clipped at month start",
			from:     "2025-10-31",
			to:       "2025-11-02",
			expected: []string{"2025-11-01", "2025-11-02"},
		},
		{
			name:     "clipped at month end",
			from:     "2025-11-29",
			to:       "2025-12-03",
			expected: []string{"2025-11-29", "2025-11-30"},
		},
		{
			name: "outside month",
			from: "2025-12-01",
			to:   "2025-12-03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, d := range EnumerateDates(day(tt.from), day(tt.to), lower, upper) {
				got = append(got, FormatDate(d))
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "hello", NormalizeText("  hello \n"))
	assert.Equal(t, "", NormalizeText("   "))
	assert.Equal(t, "ab", NormalizeText("a\x00b"))

	cleaned, changed := CleanUTF8("ok")
	assert.Equal(t, "ok", cleaned)
	assert.False(t, changed)

	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty())
}
