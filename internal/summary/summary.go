package summary

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/leadscore-cli/internal/company"
	"github.com/KaramelBytes/leadscore-cli/internal/filter"
)

// Report summarizes a cleaned company dataset.
type Report struct {
	Name       string
	Rows       int
	Kept       int
	Dropped    int
	Numeric    []NumericSummary
	Categories []filter.Facet
	Cities     []filter.Facet
	Warnings   []string
	// TopN bounds the category and city lists in Markdown output.
	TopN int
}

// NumericSummary captures coverage and range for one numeric column.
type NumericSummary struct {
	Name    string
	NonNull int
	Missing int
	Min     float64
	Max     float64
	Mean    float64
}

type column struct {
	name string
	get  func(company.Record) company.Value
}

// Build computes a Report for ds.
func Build(ds *company.Dataset) *Report {
	r := &Report{
		Name:       ds.Name,
		Rows:       ds.Rows,
		Kept:       len(ds.Records),
		Dropped:    ds.Dropped,
		Categories: filter.Categories(ds.Records),
		Cities:     filter.Cities(ds.Records),
		Warnings:   ds.Warnings,
		TopN:       8,
	}
	cols := []column{
		{company.ColFunding, func(c company.Record) company.Value { return c.FundingTotal }},
		{company.ColRounds, func(c company.Record) company.Value { return c.FundingRounds }},
		{company.ColFounded, func(c company.Record) company.Value { return c.FoundedYear }},
	}
	for _, ch := range ds.Channels {
		ch := ch
		cols = append(cols, column{ch, func(c company.Record) company.Value { return c.Channel(ch) }})
	}
	for _, col := range cols {
		s := NumericSummary{Name: col.name, Min: math.Inf(1), Max: math.Inf(-1)}
		var sum float64
		for _, rec := range ds.Records {
			v := col.get(rec)
			if !v.Present {
				s.Missing++
				continue
			}
			s.NonNull++
			sum += v.V
			s.Min = math.Min(s.Min, v.V)
			s.Max = math.Max(s.Max, v.V)
		}
		if s.NonNull > 0 {
			s.Mean = sum / float64(s.NonNull)
		} else {
			s.Min, s.Max = 0, 0
		}
		r.Numeric = append(r.Numeric, s)
	}
	return r
}

// Markdown renders the report in the same sectioned layout as other
// dataset summaries.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", r.Name)
	}
	fmt.Fprintf(&b, "Rows: %d (kept %d, dropped %d)\n", r.Rows, r.Kept, r.Dropped)
	fmt.Fprintf(&b, "Categories: %d, Cities: %d\n\n", len(r.Categories), len(r.Cities))

	b.WriteString("[NUMERIC COLUMNS]\n")
	for _, c := range r.Numeric {
		missPct := 0.0
		if total := c.NonNull + c.Missing; total > 0 {
			missPct = float64(c.Missing) * 100 / float64(total)
		}
		fmt.Fprintf(&b, "- %s: non-null %d, missing %.1f%%", c.Name, c.NonNull, missPct)
		if c.NonNull > 0 {
			fmt.Fprintf(&b, "; min %.4g, max %.4g, mean %.4g", c.Min, c.Max, c.Mean)
		}
		b.WriteString("\n")
	}

	writeFacets(&b, "TOP CATEGORIES", r.Categories, r.TopN)
	writeFacets(&b, "TOP CITIES", r.Cities, r.TopN)

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeFacets(b *strings.Builder, title string, facets []filter.Facet, n int) {
	if len(facets) == 0 {
		return
	}
	top := append([]filter.Facet(nil), facets...)
	// facets arrive sorted by value, so ties stay alphabetical
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if n > 0 && len(top) > n {
		top = top[:n]
	}
	fmt.Fprintf(b, "\n[%s]\n", title)
	for _, f := range top {
		fmt.Fprintf(b, "- %s (%d)\n", strings.ReplaceAll(f.Value, "|", "/"), f.Count)
	}
	if len(facets) > len(top) {
		fmt.Fprintf(b, "- ... %d more\n", len(facets)-len(top))
	}
}
