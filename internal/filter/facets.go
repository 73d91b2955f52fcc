package filter

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/leadscore-cli/internal/company"
)

// Facet is a distinct filter value and the number of companies carrying it.
type Facet struct {
	Value string
	Count int
}

// Categories lists distinct categories across category_list entries.
func Categories(records []company.Record) []Facet {
	return facets(records, func(r company.Record) []string { return r.CategoryList() })
}

// Cities lists distinct cities.
func Cities(records []company.Record) []Facet {
	return facets(records, func(r company.Record) []string { return []string{strings.TrimSpace(r.City)} })
}

// facets counts each value once per record, keyed case-insensitively, and
// keeps the first spelling seen. Output is sorted by value.
func facets(records []company.Record, values func(company.Record) []string) []Facet {
	idx := map[string]int{}
	var out []Facet
	for _, r := range records {
		seen := map[string]bool{}
		for _, v := range values(r) {
			if v == "" {
				continue
			}
			key := strings.ToLower(v)
			if seen[key] {
				continue
			}
			seen[key] = true
			if i, ok := idx[key]; ok {
				out[i].Count++
				continue
			}
			idx[key] = len(out)
			out = append(out, Facet{Value: v, Count: 1})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Value) < strings.ToLower(out[j].Value)
	})
	return out
}
