package company

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// workbook holds the parts of an .xlsx package needed to stream one sheet.
type workbook struct {
	zr     *zip.Reader
	sheets []sheetRef
	rels   map[string]string
	shared []string
}

type sheetRef struct {
	Name string
	ID   int
	RID  string
}

func openWorkbook(p string) (*workbook, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := &workbook{zr: zr}
	wb.sheets = parseSheetRefs(wb.part("xl/workbook.xml"))
	wb.rels = parseRels(wb.part("xl/_rels/workbook.xml.rels"))
	wb.shared = parseSharedStrings(wb.part("xl/sharedStrings.xml"))
	return wb, nil
}

func (wb *workbook) part(name string) []byte {
	for _, f := range wb.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// sheetPath resolves a sheet by name, or by 1-based index when name is empty.
func (wb *workbook) sheetPath(file, name string, index int) (string, error) {
	if name != "" {
		names := make([]string, 0, len(wb.sheets))
		for _, s := range wb.sheets {
			names = append(names, s.Name)
			if strings.EqualFold(s.Name, name) {
				if rel, ok := wb.rels[s.RID]; ok {
					return zipPath(rel), nil
				}
			}
		}
		return "", fmt.Errorf("sheet %q not found in workbook %s (available: %s)", name, filepath.Base(file), strings.Join(names, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.sheets {
		if s.ID == index {
			if rel, ok := wb.rels[s.RID]; ok {
				return zipPath(rel), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

// zipPath maps a relationship target ("worksheets/sheet1.xml" or
// "/xl/worksheets/sheet1.xml") to its entry name in the archive.
func zipPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func parseSheetRefs(data []byte) []sheetRef {
	var out []sheetRef
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		id, _ := strconv.Atoi(attr(se, "sheetId"))
		out = append(out, sheetRef{Name: attr(se, "name"), ID: id, RID: attr(se, "id")})
	}
}

func parseRels(data []byte) map[string]string {
	out := map[string]string{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		if id, target := attr(se, "Id"), attr(se, "Target"); id != "" && target != "" {
			out[id] = target
		}
	}
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var (
		out []string
		buf strings.Builder
		inT bool
		dec = xml.NewDecoder(bytes.NewReader(data))
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(t)
			}
		}
	}
}

// sheetRows streams rows of a worksheet as string slices.
type sheetRows struct {
	dec    *xml.Decoder
	shared []string
}

func (wb *workbook) rows(sheet string) (*sheetRows, error) {
	data := wb.part(sheet)
	if data == nil {
		return nil, fmt.Errorf("worksheet %s not found", sheet)
	}
	return &sheetRows{dec: xml.NewDecoder(bytes.NewReader(data)), shared: wb.shared}, nil
}

// Next returns the next row or io.EOF.
func (s *sheetRows) Next() ([]string, error) {
	var row []string
	inRow := false
	for {
		tok, err := s.dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read worksheet: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "row":
				inRow = true
				row = row[:0]
			case inRow && t.Name.Local == "c":
				col := columnIndex(attr(t, "r"))
				if col < 0 {
					col = len(row)
				}
				val, err := s.cell(attr(t, "t"))
				if err != nil {
					return nil, err
				}
				for len(row) <= col {
					row = append(row, "")
				}
				row[col] = val
			}
		case xml.EndElement:
			if t.Name.Local == "row" {
				out := make([]string, len(row))
				copy(out, row)
				return out, nil
			}
		}
	}
}

// cell consumes tokens up to </c> and returns the cell text.
func (s *sheetRows) cell(typ string) (string, error) {
	var (
		val    strings.Builder
		inText bool
	)
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return "", fmt.Errorf("read cell: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "v" || t.Name.Local == "t" {
				inText = true
			}
		case xml.CharData:
			if inText {
				val.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "v", "t":
				inText = false
			case "c":
				if typ == "s" {
					idx, err := strconv.Atoi(strings.TrimSpace(val.String()))
					if err != nil || idx < 0 || idx >= len(s.shared) {
						return "", nil
					}
					return s.shared[idx], nil
				}
				return val.String(), nil
			}
		}
	}
}

// columnIndex converts a cell reference like "C12" to a 0-based column.
func columnIndex(ref string) int {
	idx := 0
	n := 0
	for _, c := range strings.ToUpper(ref) {
		if c < 'A' || c > 'Z' {
			break
		}
		idx = idx*26 + int(c-'A'+1)
		n++
	}
	if n == 0 {
		return -1
	}
	return idx - 1
}
