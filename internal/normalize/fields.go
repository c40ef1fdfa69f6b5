// Package normalize converts free-text listing fields into numbers.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var firstNumber = regexp.MustCompile(`\d+(\.\d+)?`)

// Price strips every rune that is not an ASCII digit or '.', then parses the
// remainder. "€350,000" → 350000, "AMV: 1400000" → 1400000. An empty or
// unparseable remainder is Missing.
func Price(raw string) Number {
	if IsNull(raw) {
		return Missing
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	kept := b.String()
	if kept == "" {
		return Missing
	}
	f, err := strconv.ParseFloat(kept, 64)
	if err != nil {
		return Missing
	}
	return Some(f)
}

// Count returns the first integer or decimal found in raw.
// "3 Bed" → 3, "2.5 Baths" → 2.5, "Studio" → Missing.
func Count(raw string) Number {
	if IsNull(raw) {
		return Missing
	}
	m := firstNumber.FindString(raw)
	if m == "" {
		return Missing
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return Missing
	}
	return Some(f)
}
