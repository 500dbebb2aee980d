package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Profile Schema header names. The order and spelling are a wire contract
// shared with every renderer and downstream consumer.
const (
	FieldCompanyName        = "Company Name"
	FieldWebsite            = "Website"
	FieldIndustry           = "Industry"
	FieldDescription        = "Description"
	FieldServices           = "Services"
	FieldAddress            = "Address"
	FieldCountry            = "Country"
	FieldState              = "State"
	FieldCity               = "City"
	FieldPostalCode         = "Postal Code"
	FieldPhone              = "Phone"
	FieldEmail              = "Email"
	FieldSocialLinks        = "Social Media Links"
	FieldFounders           = "Founders/Key People"
	FieldVerificationStatus = "Verification Status"

	// FieldScrapedAt is appended by report renderers only.
	FieldScrapedAt = "Scraped At"
)

// StatusUnverified is the verification state of any value without enough
// corroborating signal.
const StatusUnverified = "UNVERIFIED"

var profileHeaders = []string{
	FieldCompanyName,
	FieldWebsite,
	FieldIndustry,
	FieldDescription,
	FieldServices,
	FieldAddress,
	FieldCountry,
	FieldState,
	FieldCity,
	FieldPostalCode,
	FieldPhone,
	FieldEmail,
	FieldSocialLinks,
	FieldFounders,
	FieldVerificationStatus,
}

// ProfileHeaders returns the 15 Profile Schema names in order.
func ProfileHeaders() []string {
	out := make([]string, len(profileHeaders))
	copy(out, profileHeaders)
	return out
}

// ReportHeaders returns the Profile Schema names followed by the capture
// timestamp column.
func ReportHeaders() []string {
	return append(ProfileHeaders(), FieldScrapedAt)
}

// Profile is a company profile. Every field is always present; absent data is
// the empty string.
type Profile struct {
	CompanyName        string `json:"Company Name"`
	Website            string `json:"Website"`
	Industry           string `json:"Industry"`
	Description        string `json:"Description"`
	Services           string `json:"Services"`
	Address            string `json:"Address"`
	Country            string `json:"Country"`
	State              string `json:"State"`
	City               string `json:"City"`
	PostalCode         string `json:"Postal Code"`
	Phone              string `json:"Phone"`
	Email              string `json:"Email"`
	SocialLinks        string `json:"Social Media Links"`
	Founders           string `json:"Founders/Key People"`
	VerificationStatus string `json:"Verification Status"`
}

// NewProfile returns a blank profile with an UNVERIFIED status.
func NewProfile() Profile {
	return Profile{VerificationStatus: StatusUnverified}
}

// fields maps header names onto the profile's storage, in schema order.
func (p *Profile) fields() []*string {
	return []*string{
		&p.CompanyName,
		&p.Website,
		&p.Industry,
		&p.Description,
		&p.Services,
		&p.Address,
		&p.Country,
		&p.State,
		&p.City,
		&p.PostalCode,
		&p.Phone,
		&p.Email,
		&p.SocialLinks,
		&p.Founders,
		&p.VerificationStatus,
	}
}

// Values returns the field values in ProfileHeaders order.
func (p Profile) Values() []string {
	ptrs := p.fields()
	out := make([]string, len(ptrs))
	for i, v := range ptrs {
		out[i] = *v
	}
	return out
}

// Get returns the value stored under a header name.
func (p Profile) Get(name string) (string, bool) {
	ptrs := p.fields()
	for i, h := range profileHeaders {
		if h == name {
			return *ptrs[i], true
		}
	}
	return "", false
}

// Set stores a value under a header name. Unknown names are ignored and
// reported as false.
func (p *Profile) Set(name, value string) bool {
	ptrs := p.fields()
	for i, h := range profileHeaders {
		if h == name {
			*ptrs[i] = value
			return true
		}
	}
	return false
}

// FromMap builds a profile from loosely-typed model output keyed by header
// name. Scalars are stringified, lists are comma-joined, and unknown keys are
// dropped.
func FromMap(m map[string]any) Profile {
	p := Profile{}
	for _, h := range profileHeaders {
		v, ok := m[h]
		if !ok {
			continue
		}
		p.Set(h, stringify(v))
	}
	return p
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		if err := enc.Encode(t); err != nil {
			return ""
		}
		return strings.TrimSpace(buf.String())
	}
}

// FirstListItem returns the first element of a comma-separated field value.
func FirstListItem(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}
