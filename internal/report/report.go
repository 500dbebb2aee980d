// Package report renders profiles as spreadsheet artifacts.
package report

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/company-profiler/internal/model"
)

// SheetName is the worksheet that holds the profile rows.
const SheetName = "Results"

// highlightColor fills contact cells whose status is not trusted.
const highlightColor = "FFFFCDD2"

// Renderer writes a set of profiles as a tabular artifact.
type Renderer interface {
	Render(w io.Writer, profiles []model.Profile) error
}

// XLSXRenderer renders one header row of ReportHeaders followed by one row
// per profile. Every row carries the same capture timestamp.
type XLSXRenderer struct {
	now func() time.Time
}

// NewXLSXRenderer creates an XLSXRenderer that stamps rows with the current
// UTC time.
func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{now: time.Now}
}

// WithClock returns a copy of r that reads the capture time from now.
func (r *XLSXRenderer) WithClock(now func() time.Time) *XLSXRenderer {
	return &XLSXRenderer{now: now}
}

// Render implements Renderer.
func (r *XLSXRenderer) Render(w io.Writer, profiles []model.Profile) error {
	f, err := r.build(profiles)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "report: write xlsx")
}

func (r *XLSXRenderer) build(profiles []model.Profile) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range model.ReportHeaders() {
		header.AddCell().SetString(h)
	}

	scrapedAt := r.now().UTC().Format(time.RFC3339)
	highlight := highlightStyle()
	headers := model.ProfileHeaders()
	for _, p := range profiles {
		row := sheet.AddRow()
		flag := NeedsReview(p.VerificationStatus)
		for i, v := range p.Values() {
			cell := row.AddCell()
			cell.SetString(v)
			if flag && (headers[i] == model.FieldPhone || headers[i] == model.FieldEmail) {
				cell.SetStyle(highlight)
			}
		}
		row.AddCell().SetString(scrapedAt)
	}
	return f, nil
}

// NeedsReview reports whether a Verification Status marks the contact
// details as untrusted.
func NeedsReview(status string) bool {
	s := strings.ToUpper(status)
	return strings.Contains(s, "FAIL") || strings.Contains(s, model.StatusUnverified)
}

func highlightStyle() *xlsx.Style {
	style := xlsx.NewStyle()
	style.Fill = *xlsx.NewFill("solid", highlightColor, highlightColor)
	style.ApplyFill = true
	return style
}

// WriteFile renders profiles to dir/name, creating dir when needed, and
// returns the written path.
func WriteFile(r Renderer, dir, name string, profiles []model.Profile) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "report: create dir %s", dir)
	}
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "report: create %s", path)
	}
	if err := r.Render(out, profiles); err != nil {
		out.Close() //nolint:errcheck
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", eris.Wrapf(err, "report: close %s", path)
	}
	return path, nil
}

// FileName returns the report name used for a job or session ID.
func FileName(prefix, id string) string {
	return prefix + "_" + id + ".xlsx"
}
