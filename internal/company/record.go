package company

import (
	"strconv"
	"strings"
)

// Column names expected in the input header (matched case-insensitively).
const (
	ColName     = "name"
	ColCategory = "category_list"
	ColCity     = "city"
	ColFunding  = "funding_total_usd"
	ColRounds   = "funding_rounds"
	ColFounded  = "founded_year"
	ColSeed     = "seed"
	ColVenture  = "venture"
	ColAngel    = "angel"
)

// RequiredColumns must all be present in the header or the dataset is rejected.
var RequiredColumns = []string{
	ColName, ColCategory, ColCity,
	ColFunding, ColRounds, ColFounded,
	ColSeed, ColVenture, ColAngel,
}

// DefaultChannels are the funding-source columns counted for funding diversity.
var DefaultChannels = []string{ColSeed, ColVenture, ColAngel}

// Value is an optional numeric cell. Present is false when the cell was empty
// or could not be used.
type Value struct {
	V       float64
	Present bool
}

// Some returns a present Value.
func Some(v float64) Value { return Value{V: v, Present: true} }

// Missing is the zero Value.
var Missing = Value{}

// Or returns the value, or def when missing.
func (v Value) Or(def float64) float64 {
	if !v.Present {
		return def
	}
	return v.V
}

// String formats the value for export; missing values render as "".
func (v Value) String() string {
	if !v.Present {
		return ""
	}
	return strconv.FormatFloat(v.V, 'f', -1, 64)
}

// Record is one company row after cleaning.
type Record struct {
	Name          string
	Categories    string // raw pipe-separated category_list
	City          string
	FundingTotal  Value
	FundingRounds Value
	FoundedYear   Value
	// Channels maps funding-source column (seed, venture, angel, extras) to amount.
	Channels map[string]Value
	// Row is the 1-based data row in the source file.
	Row int
}

// CategoryList splits the category_list into trimmed, non-empty entries.
func (r Record) CategoryList() []string {
	parts := strings.Split(r.Categories, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Channel returns the amount recorded for a funding channel.
func (r Record) Channel(name string) Value {
	if r.Channels == nil {
		return Missing
	}
	return r.Channels[name]
}
