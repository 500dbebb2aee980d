package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileHeaders_Order(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"Company Name", "Website", "Industry", "Description", "Services",
		"Address", "Country", "State", "City", "Postal Code", "Phone", "Email",
		"Social Media Links", "Founders/Key People", "Verification Status",
	}, ProfileHeaders())
	assert.Len(t, ReportHeaders(), 16)
	assert.Equal(t, "Scraped At", ReportHeaders()[15])
}

func TestProfileHeaders_ReturnsCopy(t *testing.T) {
	t.Parallel()

	h := ProfileHeaders()
	h[0] = "mutated"
	assert.Equal(t, "Company Name", ProfileHeaders()[0])
}

func TestProfile_BlankMarshalsEveryField(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Profile{})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Len(t, m, 15)
	for _, h := range ProfileHeaders() {
		v, ok := m[h]
		assert.True(t, ok, "missing key %q", h)
		assert.Equal(t, "", v)
	}
}

func TestNewProfile(t *testing.T) {
	t.Parallel()

	p := NewProfile()
	assert.Equal(t, StatusUnverified, p.VerificationStatus)
	assert.Empty(t, p.CompanyName)
}

func TestProfile_GetSetValues(t *testing.T) {
	t.Parallel()

	var p Profile
	assert.True(t, p.Set(FieldEmail, "info@acme.com"))
	assert.True(t, p.Set(FieldPostalCode, "560001"))
	assert.False(t, p.Set("Fax", "123"))

	v, ok := p.Get(FieldEmail)
	assert.True(t, ok)
	assert.Equal(t, "info@acme.com", v)

	_, ok = p.Get("Fax")
	assert.False(t, ok)

	vals := p.Values()
	require.Len(t, vals, 15)
	assert.Equal(t, "560001", vals[9])
	assert.Equal(t, "info@acme.com", vals[11])
}

func TestFromMap(t *testing.T) {
	t.Parallel()

	p := FromMap(map[string]any{
		"Company Name":        "  Acme  ",
		"Services":            []any{"Consulting", "Audit", ""},
		"Postal Code":         float64(94105),
		"Founders/Key People": nil,
		"Unknown":             "dropped",
	})

	assert.Equal(t, "Acme", p.CompanyName)
	assert.Equal(t, "Consulting, Audit", p.Services)
	assert.Equal(t, "94105", p.PostalCode)
	assert.Empty(t, p.Founders)
}

func TestFirstListItem(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a@x.com", FirstListItem(" a@x.com , b@x.com"))
	assert.Equal(t, "solo", FirstListItem("solo"))
	assert.Equal(t, "", FirstListItem(""))
}
