package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/leadscore-cli/internal/company"
	"github.com/KaramelBytes/leadscore-cli/internal/scoring"
)

// Filter selects companies by category and city. Within a field any selected
// value may match; both fields must match. An empty field matches everything.
type Filter struct {
	// Categories match as case-insensitive substrings of category_list.
	Categories []string
	// Cities match case-insensitively and exactly.
	Cities []string
}

// IsZero reports whether the filter selects every company.
func (f Filter) IsZero() bool { return len(clean(f.Categories)) == 0 && len(clean(f.Cities)) == 0 }

// Match reports whether r passes the filter.
func (f Filter) Match(r company.Record) bool {
	if cats := clean(f.Categories); len(cats) > 0 {
		list := strings.ToLower(r.Categories)
		ok := false
		for _, c := range cats {
			if strings.Contains(list, strings.ToLower(c)) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if cities := clean(f.Cities); len(cities) > 0 {
		ok := false
		for _, c := range cities {
			if strings.EqualFold(strings.TrimSpace(r.City), c) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Apply returns the records that match, preserving order.
func (f Filter) Apply(records []company.Record) []company.Record {
	out := make([]company.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filter) String() string {
	if f.IsZero() {
		return "all companies"
	}
	var parts []string
	if cats := clean(f.Categories); len(cats) > 0 {
		parts = append(parts, fmt.Sprintf("category in [%s]", strings.Join(cats, ", ")))
	}
	if cities := clean(f.Cities); len(cities) > 0 {
		parts = append(parts, fmt.Sprintf("city in [%s]", strings.Join(cities, ", ")))
	}
	return strings.Join(parts, " and ")
}

func clean(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SortKey orders scored results.
type SortKey string

const (
	SortScore   SortKey = "score"
	SortFunding SortKey = "funding"
)

// ParseSortKey accepts "score" (default when empty) or "funding".
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "score":
		return SortScore, nil
	case "funding":
		return SortFunding, nil
	default:
		return "", fmt.Errorf("unsupported sort key: %s (use score|funding)", s)
	}
}

// Sort orders results descending by key. Funding sorts missing amounts last
// and breaks ties by score; all ties end with company name.
func Sort(results []scoring.Result, key SortKey) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if key == SortFunding {
			fa, fb := a.Company.FundingTotal, b.Company.FundingTotal
			if fa.Present != fb.Present {
				return fa.Present
			}
			if fa.V != fb.V {
				return fa.V > fb.V
			}
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return strings.ToLower(a.Company.Name) < strings.ToLower(b.Company.Name)
	})
}

// Limit keeps the first n results; n <= 0 keeps all.
func Limit(results []scoring.Result, n int) []scoring.Result {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}
