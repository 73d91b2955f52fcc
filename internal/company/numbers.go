package company

import (
	"math"
	"strconv"
	"strings"
)

type cellStatus int

const (
	cellOK cellStatus = iota
	cellEmpty
	cellInvalid
)

// placeholders the source data uses for "no value".
var emptyMarkers = map[string]bool{
	"":    true,
	"-":   true,
	"–":   true,
	"—":   true,
	"n/a": true,
	"na":  true,
	"nan": true,
}

// parseAmount parses a funding-style cell such as " $1,250,000 " or "17,50,000".
// Currency symbols and grouping separators are stripped. A comma is treated as
// a decimal separator only when it appears once, after any dot, and is not
// followed by exactly three digits.
func parseAmount(s string) (float64, cellStatus) {
	raw := strings.ReplaceAll(s, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if emptyMarkers[strings.ToLower(raw)] {
		return 0, cellEmpty
	}
	raw = strings.TrimPrefix(raw, "USD")
	raw = strings.TrimSuffix(raw, "USD")
	raw = strings.NewReplacer("$", "", " ", "", "'", "").Replace(raw)
	if raw == "" {
		return 0, cellEmpty
	}

	commas := strings.Count(raw, ",")
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case commas == 0:
	case dpos >= 0 && cpos > dpos:
		// 1.234.567,89
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case commas == 1 && dpos < 0 && len(raw)-cpos-1 != 3:
		raw = strings.Replace(raw, ",", ".", 1)
	default:
		raw = strings.ReplaceAll(raw, ",", "")
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, cellInvalid
	}
	return f, cellOK
}

// parseYear parses a founded year, accepting "2007" and "2007.0".
func parseYear(s string) (float64, cellStatus) {
	f, st := parseAmount(s)
	if st != cellOK {
		return 0, st
	}
	if f != math.Trunc(f) {
		return 0, cellInvalid
	}
	return f, cellOK
}
