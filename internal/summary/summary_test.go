package summary_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/leadscore-cli/internal/company"
	"github.com/KaramelBytes/leadscore-cli/internal/filter"
	"github.com/KaramelBytes/leadscore-cli/internal/summary"
)

func TestBuildAndMarkdown(t *testing.T) {
	in := "name,category_list,city,funding_total_usd,funding_rounds,founded_year,seed,venture,angel\n" +
		"Acme,Software|Analytics,Berlin,100,1,2000,10,,\n" +
		"Beta,Software,Berlin,300,3,2010,,,\n" +
		"Gamma,Hardware,Paris,oops,2,,,,\n" +
		"Gamma,Hardware,Paris,1,1,2001,,,\n"
	opt := company.DefaultLoadOptions()
	opt.Now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	ds, err := company.ReadCSV(strings.NewReader(in), "hq.csv", opt)
	require.NoError(t, err)

	rep := summary.Build(ds)
	assert.Equal(t, 4, rep.Rows)
	assert.Equal(t, 3, rep.Kept)
	assert.Equal(t, 1, rep.Dropped)

	funding := rep.Numeric[0]
	assert.Equal(t, "funding_total_usd", funding.Name)
	assert.Equal(t, 2, funding.NonNull)
	assert.Equal(t, 1, funding.Missing)
	assert.Equal(t, 100.0, funding.Min)
	assert.Equal(t, 300.0, funding.Max)
	assert.Equal(t, 200.0, funding.Mean)

	md := rep.Markdown()
	assert.Contains(t, md, "[DATASET SUMMARY]")
	assert.Contains(t, md, "File: hq.csv")
	assert.Contains(t, md, "Rows: 4 (kept 3, dropped 1)")
	assert.Contains(t, md, "- funding_total_usd: non-null 2, missing 33.3%")
	assert.Contains(t, md, "[TOP CATEGORIES]\n- Software (2)\n")
	assert.Contains(t, md, "[TOP CITIES]\n- Berlin (2)\n- Paris (1)\n")
	assert.Contains(t, md, "[NOTES]")
	assert.Contains(t, md, "non-numeric values treated as missing")
}

func TestMarkdown_TruncatesFacets(t *testing.T) {
	rep := &summary.Report{Name: "x", TopN: 1, Cities: []filter.Facet{
		{Value: "A", Count: 1},
		{Value: "B", Count: 3},
		{Value: "C", Count: 1},
	}}
	md := rep.Markdown()
	assert.Contains(t, md, "[TOP CITIES]\n- B (3)\n- ... 2 more\n")
}
