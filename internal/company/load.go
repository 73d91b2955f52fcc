package company

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// LoadOptions controls ingestion of a company dataset.
type LoadOptions struct {
	// Delimiter for CSV. If 0, chosen by extension (',' or '\t' for .tsv).
	Delimiter rune
	// Encoding of CSV input: "utf-8" (default), "latin1"/"iso-8859-1" or "windows-1252".
	Encoding string
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
	// ExtraChannels are optional funding-source columns counted for diversity
	// in addition to seed, venture and angel.
	ExtraChannels []string
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Now supplies the current time for founded-year checks.
	Now func() time.Time
}

// DefaultLoadOptions returns options for UTF-8 CSV input.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{SheetIndex: 1, Now: time.Now}
}

// Dataset is a cleaned company table.
type Dataset struct {
	Name     string
	Header   []string
	Records  []Record
	Channels []string
	// Rows is the number of data rows read; Dropped counts rows removed by cleaning.
	Rows     int
	Dropped  int
	Warnings []string
}

// rowSource yields raw rows; it returns io.EOF when exhausted.
type rowSource interface {
	Next() ([]string, error)
}

type csvRows struct{ r *csv.Reader }

func (c csvRows) Next() ([]string, error) { return c.r.Read() }

// Load reads a CSV, TSV or XLSX file and returns the cleaned dataset.
func Load(path string, opt LoadOptions) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 && strings.HasSuffix(strings.ToLower(path), ".tsv") {
		opt.Delimiter = '\t'
	}
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV cleans CSV content read from r. name is used in reports and errors.
func ReadCSV(r io.Reader, name string, opt LoadOptions) (*Dataset, error) {
	dr, err := decodeReader(r, opt.Encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(dr)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	return clean(csvRows{cr}, name, opt)
}

// LoadXLSX reads the selected worksheet of an .xlsx workbook.
func LoadXLSX(path string, opt LoadOptions) (*Dataset, error) {
	wb, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	sheet, err := wb.sheetPath(path, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, err
	}
	rows, err := wb.rows(sheet)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	if opt.SheetName != "" {
		name = fmt.Sprintf("%s (sheet: %s)", name, opt.SheetName)
	}
	return clean(rows, name, opt)
}

func decodeReader(r io.Reader, enc string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s (use utf-8, latin1 or windows-1252)", enc)
	}
}

// warnCounter aggregates per-column cleaning notes into stable warning lines.
type warnCounter map[string]int

func (w warnCounter) add(col, reason string) { w[col+": "+reason]++ }

func (w warnCounter) lines() []string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s (%d)", k, w[k]))
	}
	return out
}

func clean(src rowSource, name string, opt LoadOptions) (*Dataset, error) {
	header, err := src.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MissingColumnsError{File: name, Columns: RequiredColumns}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		key := strings.ToLower(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{File: name, Columns: missing}
	}

	ds := &Dataset{Name: name, Header: append([]string(nil), header...)}
	warns := warnCounter{}
	ds.Channels = append(ds.Channels, DefaultChannels...)
	for _, extra := range opt.ExtraChannels {
		extra = strings.ToLower(strings.TrimSpace(extra))
		if extra == "" || containsString(ds.Channels, extra) {
			continue
		}
		if _, ok := index[extra]; !ok {
			ds.Warnings = append(ds.Warnings, fmt.Sprintf("funding channel column %q not found; ignored", extra))
			continue
		}
		ds.Channels = append(ds.Channels, extra)
	}

	now := time.Now
	if opt.Now != nil {
		now = opt.Now
	}
	currentYear := float64(now().Year())
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}

	seen := map[string]bool{}
	for {
		row, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", ds.Rows+1, err)
		}
		if ds.Rows >= maxRows {
			ds.Warnings = append(ds.Warnings, fmt.Sprintf("stopped after %d rows (max rows)", maxRows))
			break
		}
		ds.Rows++
		cell := func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := Record{
			Name:       cell(ColName),
			Categories: cell(ColCategory),
			City:       cell(ColCity),
			Row:        ds.Rows,
		}
		if rec.Name == "" || rec.Categories == "" || rec.City == "" {
			ds.Dropped++
			warns.add("rows", "dropped for missing name, category or city")
			continue
		}
		key := strings.ToLower(rec.Name)
		if seen[key] {
			ds.Dropped++
			warns.add("rows", "dropped as duplicate company name")
			continue
		}
		seen[key] = true

		rec.FundingTotal = amountCell(cell(ColFunding), ColFunding, warns)
		rec.FundingRounds = amountCell(cell(ColRounds), ColRounds, warns)
		rec.FoundedYear = yearCell(cell(ColFounded), currentYear, warns)
		rec.Channels = make(map[string]Value, len(ds.Channels))
		for _, ch := range ds.Channels {
			rec.Channels[ch] = amountCell(cell(ch), ch, warns)
		}
		ds.Records = append(ds.Records, rec)
	}
	ds.Warnings = append(ds.Warnings, warns.lines()...)
	return ds, nil
}

func amountCell(s, col string, warns warnCounter) Value {
	v, st := parseAmount(s)
	switch st {
	case cellEmpty:
		return Missing
	case cellInvalid:
		warns.add(col, "non-numeric values treated as missing")
		return Missing
	}
	if v < 0 {
		warns.add(col, "negative values treated as missing")
		return Missing
	}
	return Some(v)
}

func yearCell(s string, currentYear float64, warns warnCounter) Value {
	v, st := parseYear(s)
	switch st {
	case cellEmpty:
		return Missing
	case cellInvalid:
		warns.add(ColFounded, "non-numeric values treated as missing")
		return Missing
	}
	if v <= 0 || v > currentYear {
		warns.add(ColFounded, "out-of-range years treated as missing")
		return Missing
	}
	return Some(v)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
