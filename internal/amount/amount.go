// Package amount converts free-text ingredient quantities to numbers and back.
//
// Recipe amounts arrive as whatever the author typed: "2", "2.5", "1/2",
// "1 1/2", or nothing at all ("salt to taste"). Parse is deliberately
// forgiving and never fails; Format snaps scaled values back onto the
// fractions cooks actually write.
package amount

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// fractionPattern matches a simple or mixed fraction: "1/2", "1 1/2".
// Checked before the decimal fallback since fraction strings are not
// valid decimals.
var fractionPattern = regexp.MustCompile(`(\d+)?\s*(\d+)/(\d+)`)

// Parse converts a free-text quantity string into a number. Empty,
// whitespace-only, or unparseable input yields 0; callers treat 0 as
// "no usable quantity".
func Parse(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	if m := fractionPattern.FindStringSubmatch(text); m != nil {
		whole := 0
		if m[1] != "" {
			whole, _ = strconv.Atoi(m[1])
		}
		numerator, _ := strconv.Atoi(m[2])
		denominator, _ := strconv.Atoi(m[3])
		if denominator == 0 {
			return 0
		}
		return float64(whole) + float64(numerator)/float64(denominator)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return v
}

type fraction struct {
	hundredths int
	text       string
}

// Common culinary fractions, in fixed order; first match within
// tolerance wins.
var fractions = []fraction{
	{25, "1/4"},
	{33, "1/3"},
	{50, "1/2"},
	{67, "2/3"},
	{75, "3/4"},
}

// fractionTolerance is the snapping distance, in hundredths.
const fractionTolerance = 5

// Format renders a numeric amount as a human-friendly string, preferring
// common fractions: 0.5 -> "1/2", 1.5 -> "1 1/2", 2 -> "2", 2.8 -> "2.8".
// The comparison works in integer hundredths; float remainders like
// 2.3 -> 0.29999... would otherwise bleed across the tolerance edge.
func Format(v float64) string {
	hundredths := int(math.Round(v * 100))
	whole := hundredths / 100
	frac := hundredths % 100

	for _, f := range fractions {
		d := frac - f.hundredths
		if d < 0 {
			d = -d
		}
		if d < fractionTolerance {
			if whole == 0 {
				return f.text
			}
			return strconv.Itoa(whole) + " " + f.text
		}
	}

	if frac == 0 {
		return strconv.Itoa(whole)
	}
	return strconv.FormatFloat(float64(hundredths)/100, 'f', 1, 64)
}
