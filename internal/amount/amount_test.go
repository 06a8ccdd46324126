package amount

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"", 0},
		{" ", 0},
		{"  \t ", 0},
		{"2", 2},
		{"2.5", 2.5},
		{"0.25", 0.25},
		{"1/2", 0.5},
		{"3/4", 0.75},
		{"1 1/2", 1.5},
		{"2 1/4", 2.25},
		{"abc", 0},
		{"to taste", 0},
		{"1/0", 0},
	}
	for _, tt := range tests {
		if got := Parse(tt.input); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0.25, "1/4"},
		{0.33, "1/3"},
		{0.5, "1/2"},
		{0.67, "2/3"},
		{0.75, "3/4"},
		{1.5, "1 1/2"},
		{2.25, "2 1/4"},
		{2, "2"},
		{0, "0"},
		{3, "3"},
		{0.1, "0.1"},
		{2.8, "2.8"},
	}
	for _, tt := range tests {
		if got := Format(tt.input); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// Values sitting near a table fraction snap onto it. The comparison runs
// in exact hundredths, so 2.3 lands on 1/3 (distance 3) and never on 1/4
// even though its float remainder 0.29999... sits a hair inside that edge.
func TestFormatSnapsWithinTolerance(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0.26, "1/4"},
		{0.49, "1/2"},
		{0.52, "1/2"},
		{1.34, "1 1/3"},
		{2.3, "2 1/3"},
		{0.3, "1/3"},
		{2.28, "2 1/4"},
	}
	for _, tt := range tests {
		if got := Format(tt.input); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// Amounts that land exactly on a table fraction survive a format/parse
// round trip within the snapping tolerance.
func TestFormatParseRoundTrip(t *testing.T) {
	for _, v := range []float64{0.25, 0.5, 0.75, 1.25, 1.5, 2.75, 3, 4.5} {
		got := Parse(Format(v))
		if math.Abs(got-v) > 0.05 {
			t.Errorf("Parse(Format(%v)) = %v, drift > 0.05", v, got)
		}
	}
}
