package timeparsing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in   string
		want Offset
		ok   bool
	}{
		{"-2w", Offset{-2, 'w'}, true},
		{"+6h", Offset{6, 'h'}, true},
		{"3m", Offset{3, 'm'}, true},
		{"-1q", Offset{-1, 'q'}, true},
		{"-10d", Offset{-10, 'd'}, true},
		{"1y", Offset{1, 'y'}, true},
		{"", Offset{}, false},
		{"yesterday", Offset{}, false},
		{"2024-01-31", Offset{}, false},
		{"6h+", Offset{}, false},
		{"--1d", Offset{}, false},
		{"1x", Offset{}, false},
		{"-w", Offset{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseOffset(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOffsetFrom(t *testing.T) {
	now := time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"-6h", time.Date(2024, 5, 15, 3, 30, 0, 0, time.UTC)},
		{"-1d", time.Date(2024, 5, 14, 9, 30, 0, 0, time.UTC)},
		{"-2w", time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
		{"-1m", time.Date(2024, 4, 15, 9, 30, 0, 0, time.UTC)},
		{"-1q", time.Date(2024, 2, 15, 9, 30, 0, 0, time.UTC)},
		{"-1y", time.Date(2023, 5, 15, 9, 30, 0, 0, time.UTC)},
		{"+1w", time.Date(2024, 5, 22, 9, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			off, ok := ParseOffset(tt.in)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(off.From(now)), "got %v, want %v", off.From(now), tt.want)
		})
	}
}

func TestOffsetFromCalendarEdges(t *testing.T) {
	// Leap day.
	got := Offset{1, 'd'}.From(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	// AddDate normalization: Mar 31 - 1m is Mar 2 in a leap year.
	got = Offset{-1, 'm'}.From(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestOffsetFromKeepsLocation(t *testing.T) {
	loc := time.FixedZone("EET", 2*3600)
	now := time.Date(2024, 5, 15, 9, 30, 0, 0, loc)
	got := Offset{-1, 'w'}.From(now)
	assert.Equal(t, loc, got.Location())
}
