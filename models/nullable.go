package models

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// numberRegexp captures the first number in a string, allowing thousands separators
	numberRegexp = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	// metricAreaRegexp detects square-metre units
	metricAreaRegexp = regexp.MustCompile(`(?i)(m2|m²|sq\.?\s*m\b|sqm|square met)`)
)

// nullTokens are cell values treated as missing.
var nullTokens = map[string]struct{}{
	"":     {},
	"n/a":  {},
	"na":   {},
	"nan":  {},
	"none": {},
	"null": {},
}

// NullInt is an integer column value that may be absent. Values read from a
// file keep their cell text in Raw, which is what gets written back out; Int
// and Valid are the parsed view used for filtering and statistics.
type NullInt struct {
	Int   int
	Valid bool
	Raw   string
}

// IntOf returns a present NullInt.
func IntOf(n int) NullInt {
	return NullInt{Int: n, Valid: true}
}

// ParseNullInt reads an integer cell. Currency symbols, thousands separators and
// fractions are tolerated, fractions rounding to the nearest whole number;
// anything unparsable is null. The cell text is kept as is.
func ParseNullInt(raw string) NullInt {
	n, ok := ParseWhole(raw)
	return NullInt{Int: n, Valid: ok, Raw: raw}
}

// ParseWhole parses a plain or currency-formatted number, rounding fractions
// half away from zero.
func ParseWhole(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if isNull(s) {
		return 0, false
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}

// String renders the cell text when the value was read from a file, otherwise
// the integer, or "" when null.
func (n NullInt) String() string {
	if n.Raw != "" {
		return n.Raw
	}
	if !n.Valid {
		return ""
	}
	return strconv.Itoa(n.Int)
}

// Ptr returns nil for a null value.
func (n NullInt) Ptr() *int {
	if !n.Valid {
		return nil
	}
	v := n.Int
	return &v
}

// Area is a floor-area cell. Scraped sources often carry units ("1500 sqft",
// "139.4 m2"), so the raw text is kept and parsed on demand.
type Area struct {
	Raw string
}

// AreaOf builds an Area from a plain square-foot count.
func AreaOf(sqft int) Area {
	return Area{Raw: strconv.Itoa(sqft)}
}

// ParseArea keeps the trimmed cell text; null tokens become an empty Area.
func ParseArea(raw string) Area {
	s := strings.TrimSpace(raw)
	if isNull(s) {
		return Area{}
	}
	return Area{Raw: s}
}

// SquareFeet returns the area in whole square feet.
func (a Area) SquareFeet() (int, bool) {
	match := numberRegexp.FindString(a.Raw)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if metricAreaRegexp.MatchString(a.Raw) {
		f *= 10.7639
	}
	return int(math.Round(f)), true
}

// Valid reports whether a square-foot value can be derived.
func (a Area) Valid() bool {
	_, ok := a.SquareFeet()
	return ok
}

func (a Area) String() string {
	return a.Raw
}

func isNull(s string) bool {
	_, ok := nullTokens[strings.ToLower(s)]
	return ok
}
