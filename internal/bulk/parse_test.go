package bulk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func xlsxBytes(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseRows_CSV(t *testing.T) {
	t.Parallel()

	data := []byte("\ufeffWebsite , Company Name,Country\nacme.com,Acme,US\n,Globex,India\n,,\n,,Nowhere\n")

	rows, err := ParseRows("companies.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "acme.com", rows[0].Input.URL)
	assert.Equal(t, "Acme", rows[0].Input.CompanyName)
	assert.Equal(t, "US", rows[0].Input.Geography)

	assert.Equal(t, 3, rows[1].Line)
	assert.Empty(t, rows[1].Input.URL)
	assert.Equal(t, "Globex", rows[1].Input.CompanyName)
	assert.True(t, rows[1].Valid())

	assert.Equal(t, 4, rows[2].Line)
	assert.False(t, rows[2].Valid())
	assert.Equal(t, "Nowhere", rows[2].Input.Geography)
}

func TestParseRows_ColumnAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		check  func(t *testing.T, r Row)
	}{
		{"URL", func(t *testing.T, r Row) { assert.Equal(t, "v", r.Input.URL) }},
		{"company", func(t *testing.T, r Row) { assert.Equal(t, "v", r.Input.CompanyName) }},
		{"NAME", func(t *testing.T, r Row) { assert.Equal(t, "v", r.Input.CompanyName) }},
		{"Location", func(t *testing.T, r Row) { assert.Equal(t, "v", r.Input.Geography) }},
		{"Geography", func(t *testing.T, r Row) { assert.Equal(t, "v", r.Input.Geography) }},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			rows, err := ParseRows("in.csv", []byte(tt.header+"\nv\n"))
			require.NoError(t, err)
			require.Len(t, rows, 1)
			tt.check(t, rows[0])
		})
	}
}

func TestParseRows_URLPreferredOverWebsite(t *testing.T) {
	t.Parallel()

	rows, err := ParseRows("in.csv", []byte("website,url\nb.com,a.com\n"))
	require.NoError(t, err)
	assert.Equal(t, "a.com", rows[0].Input.URL)
}

func TestParseRows_XLSX(t *testing.T) {
	t.Parallel()

	data := xlsxBytes(t, [][]string{
		{"Company", "Geography"},
		{"Acme Solutions Pvt Ltd", "India"},
		{"Globex", ""},
	})

	rows, err := ParseRows("Upload.XLSX", data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme Solutions Pvt Ltd", rows[0].Input.CompanyName)
	assert.Equal(t, "India", rows[0].Input.Geography)
	assert.Equal(t, 3, rows[1].Line)
}

func TestParseRows_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseRows("empty.csv", nil)
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ParseRows("bad.xlsx", []byte("not a zip"))
	assert.Error(t, err)

	_, err = ParseRows("bad.csv", []byte("a,\"b\nc"))
	assert.Error(t, err)
}
