package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/KaramelBytes/leadscore-cli/internal/company"
	"github.com/KaramelBytes/leadscore-cli/internal/scoring"
	"github.com/KaramelBytes/leadscore-cli/internal/utils"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat accepts table, csv or json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use table|csv|json)", s)
	}
}

// FormatForPath picks csv or json from a file extension, defaulting to csv.
func FormatForPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

// Options controls which columns are written.
type Options struct {
	// Explain adds per-factor percentile columns.
	Explain bool
}

// CSVHeader is the CRM import header.
var CSVHeader = []string{
	"Company Name", "Category", "City", "Funding Amount",
	company.ColRounds, company.ColFounded,
	company.ColSeed, company.ColVenture, company.ColAngel,
	"Score", "Top Quality", "Tier",
}

var explainHeader = []string{"Funding Pct", "Rounds Pct", "Age Pct", "Funding Type Pct"}

// Write renders results in the given format.
func Write(w io.Writer, f Format, results []scoring.Result, opt Options) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, results, opt)
	case FormatJSON:
		return WriteJSON(w, results, opt)
	case FormatTable:
		return WriteTable(w, results, opt)
	default:
		return fmt.Errorf("unsupported format: %s", f)
	}
}

// WriteFile renders results and writes them atomically to path.
func WriteFile(path string, f Format, results []scoring.Result, opt Options) error {
	var buf bytes.Buffer
	if err := Write(&buf, f, results, opt); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// WriteCSV writes the CRM export. Score is on a 0-100 scale with two decimals.
func WriteCSV(w io.Writer, results []scoring.Result, opt Options) error {
	cw := csv.NewWriter(w)
	header := CSVHeader
	if opt.Explain {
		header = append(append([]string(nil), CSVHeader...), explainHeader...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range results {
		c := r.Company
		row := []string{
			c.Name, c.Categories, c.City, c.FundingTotal.String(),
			c.FundingRounds.String(), c.FoundedYear.String(),
			c.Channel(company.ColSeed).String(), c.Channel(company.ColVenture).String(), c.Channel(company.ColAngel).String(),
			formatScore(r.Score), r.TopQuality.String(), string(r.Tier),
		}
		if opt.Explain {
			for _, f := range scoring.Factors {
				row = append(row, strconv.FormatFloat(r.Percentile(f), 'f', 4, 64))
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatScore(s float64) string { return strconv.FormatFloat(s*100, 'f', 2, 64) }

type jsonResult struct {
	Name          string             `json:"name"`
	Categories    []string           `json:"categories"`
	City          string             `json:"city"`
	FundingTotal  *float64           `json:"funding_total_usd"`
	FundingRounds *float64           `json:"funding_rounds"`
	FoundedYear   *float64           `json:"founded_year"`
	Channels      map[string]float64 `json:"channels,omitempty"`
	Diversity     int                `json:"funding_diversity"`
	Score         float64            `json:"score"`
	TopQuality    string             `json:"top_quality"`
	Tier          scoring.Tier       `json:"tier"`
	Advice        string             `json:"advice"`
	Percentiles   map[string]float64 `json:"percentiles,omitempty"`
}

func ptr(v company.Value) *float64 {
	if !v.Present {
		return nil
	}
	x := v.V
	return &x
}

// WriteJSON writes an indented JSON array. Score stays on the 0-1 scale.
func WriteJSON(w io.Writer, results []scoring.Result, opt Options) error {
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		c := r.Company
		jr := jsonResult{
			Name:          c.Name,
			Categories:    c.CategoryList(),
			City:          c.City,
			FundingTotal:  ptr(c.FundingTotal),
			FundingRounds: ptr(c.FundingRounds),
			FoundedYear:   ptr(c.FoundedYear),
			Diversity:     r.Diversity,
			Score:         r.Score,
			TopQuality:    r.TopQuality.String(),
			Tier:          r.Tier,
			Advice:        r.Tier.Advice(),
		}
		for k, v := range c.Channels {
			if v.Present {
				if jr.Channels == nil {
					jr.Channels = map[string]float64{}
				}
				jr.Channels[k] = v.V
			}
		}
		if opt.Explain {
			jr.Percentiles = map[string]float64{}
			for _, f := range scoring.Factors {
				jr.Percentiles[f.Key()] = r.Percentile(f)
			}
		}
		out = append(out, jr)
	}
	b, err := utils.PrettyJSON(out)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// WriteTable writes an aligned, human-readable table.
func WriteTable(w io.Writer, results []scoring.Result, opt Options) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	cols := []string{"#", "COMPANY", "CITY", "FUNDING", "ROUNDS", "FOUNDED", "SCORE", "TOP QUALITY", "TIER"}
	if opt.Explain {
		cols = append(cols, "F%", "R%", "A%", "D%")
	}
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
	for i, r := range results {
		c := r.Company
		fields := []string{
			strconv.Itoa(i + 1),
			truncate(c.Name, 40),
			c.City,
			money(c.FundingTotal),
			orDash(c.FundingRounds.String()),
			orDash(c.FoundedYear.String()),
			formatScore(r.Score),
			r.TopQuality.String(),
			string(r.Tier),
		}
		if opt.Explain {
			for _, f := range scoring.Factors {
				fields = append(fields, strconv.FormatFloat(r.Percentile(f)*100, 'f', 0, 64))
			}
		}
		fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// money renders an amount as $1,234,567.
func money(v company.Value) string {
	if !v.Present {
		return "-"
	}
	digits := strconv.FormatFloat(v.V, 'f', 0, 64)
	var b strings.Builder
	b.WriteByte('$')
	for i, ch := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	return b.String()
}
