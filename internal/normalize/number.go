package normalize

import (
	"strconv"
	"strings"
)

// Number is an optional real value. The zero value is Missing.
type Number struct {
	Value float64
	Valid bool
}

// Missing marks an absent value.
var Missing = Number{}

// Some wraps v as a present value.
func Some(v float64) Number { return Number{Value: v, Valid: true} }

// Float64 returns the value and whether it is present.
func (n Number) Float64() (float64, bool) { return n.Value, n.Valid }

// String renders the shortest representation that parses back to the same
// value, or "" when missing.
func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// nullTokens are the cell values treated as absent when reading tabular data.
var nullTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNull reports whether raw is a null marker.
func IsNull(raw string) bool {
	_, ok := nullTokens[strings.TrimSpace(raw)]
	return ok
}

// Parse reads raw as a plain number. Null markers and unparseable text are Missing.
func Parse(raw string) Number {
	if IsNull(raw) {
		return Missing
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Missing
	}
	return Some(f)
}
