// Package bulk reads company lists from CSV or XLSX uploads and runs the
// profile pipeline over every row.
package bulk

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/company-profiler/internal/model"
)

// ErrNoHeader is returned for an upload without a header row.
var ErrNoHeader = eris.New("bulk: file has no header row")

var (
	urlColumns  = []string{"url", "website"}
	nameColumns = []string{"company", "company name", "name"}
	geoColumns  = []string{"geography", "country", "location"}
)

// Row is one data row of an upload. Line is the 1-based spreadsheet line,
// counting the header.
type Row struct {
	Line  int
	Input model.Input
}

// Valid reports whether the row names a URL or a company.
func (r Row) Valid() bool {
	return r.Input.HasURL() || r.Input.HasName()
}

// ParseRows decodes an upload. Files ending in .xlsx or .xls are read as
// spreadsheets (first sheet); anything else is CSV.
func ParseRows(name string, data []byte) ([]Row, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		records, err = readXLSX(data)
	default:
		records, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}
	return toRows(records)
}

func toRows(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := cols[key]; !ok {
			cols[key] = i
		}
	}
	urlCol := findColumn(cols, urlColumns)
	nameCol := findColumn(cols, nameColumns)
	geoCol := findColumn(cols, geoColumns)

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		rows = append(rows, Row{
			Line: len(rows) + 2,
			Input: model.Input{
				URL:         cell(rec, urlCol),
				CompanyName: cell(rec, nameCol),
				Geography:   cell(rec, geoCol),
			},
		})
	}
	return rows, nil
}

func findColumn(cols map[string]int, aliases []string) int {
	for _, a := range aliases {
		if i, ok := cols[a]; ok {
			return i
		}
	}
	return -1
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "bulk: parse csv")
		}
		records = append(records, rec)
	}
	return records, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "bulk: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, ErrNoHeader
	}

	sheet := f.Sheets[0]
	records := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		records = append(records, rowToStrings(row))
	}
	return records, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, c := range row.Cells {
		cells[j] = c.String()
	}
	return cells
}
