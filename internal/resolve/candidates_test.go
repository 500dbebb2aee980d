package resolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidates_StripsSuffixes(t *testing.T) {
	t.Parallel()

	got := Candidates("Acme Solutions Pvt Ltd", "India")
	require.NotEmpty(t, got)
	assert.Equal(t, "acme.com", got[0])
	assert.Contains(t, got, "acme.io")
	assert.Contains(t, got, "acme.co.in")
	assert.Len(t, got, len(candidateTLDs))
	for _, h := range got {
		assert.NotContains(t, h, "solutions")
		assert.NotContains(t, h, "pvt")
		assert.NotContains(t, h, "ltd")
	}
}

func TestCandidates_SuffixOnlyIsEmpty(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "   ", "Ltd Inc Co", "Private Limited", "!!!"} {
		assert.Empty(t, Candidates(name, ""), "name %q", name)
	}
}

func TestCandidates_MultiToken(t *testing.T) {
	t.Parallel()

	got := Candidates("Blue Ocean Technologies", "")
	require.Len(t, got, 2*len(candidateTLDs))
	assert.Equal(t, []string{"blueocean.com", "blue-ocean.com", "blueocean.co", "blue-ocean.co"}, got[:4])
}

func TestCandidates_NoDuplicates(t *testing.T) {
	t.Parallel()

	got := Candidates("Alpha Beta Gamma", "")
	seen := map[string]bool{}
	for _, h := range got {
		assert.False(t, seen[h], "duplicate %s", h)
		seen[h] = true
		assert.False(t, strings.HasPrefix(h, "http"))
	}
}

func TestCandidates_GeographyIgnored(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Candidates("Acme", ""), Candidates("Acme", "Germany"))
}

func TestNameTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"Acme Pvt. Ltd.", []string{"acme"}},
		{"Foo Inc.", []string{"foo"}},
		{"Café Nandú Labs", []string{"cafe", "nandu"}},
		{"Fintech Partners", []string{"fintech", "partners"}},
		{"Smith & Co", []string{"smith"}},
		{"Data-Driven Services LLP", []string{"data", "driven"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NameTokens(tt.in), "input %q", tt.in)
	}
}
