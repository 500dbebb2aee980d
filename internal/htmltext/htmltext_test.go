package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello", "hello"},
		{"tags", "<p>Hello</p><p>World</p>", "Hello World"},
		{"entities", "<b>Fish &amp; Chips</b>", "Fish & Chips"},
		{"whitespace", "<div>\n  a\t\tb  </div>", "a b"},
		{"script dropped", "<script>var x = 1;</script><p>Visible</p>", "Visible"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
	assert.Equal(t, "café", Truncate("café au lait", 4))
	assert.Empty(t, Truncate("x", 0))
}

func TestParseMeta(t *testing.T) {
	t.Parallel()

	body := `<html><head><title> Acme Widgets </title>
<meta name="description" content="We make widgets.">
<meta property="og:description" content="OG text"></head>
<body><p>First   paragraph
here.</p><p>Second</p></body></html>`

	m, err := ParseMeta(body)
	require.NoError(t, err)
	assert.Equal(t, "Acme Widgets", m.Title)
	assert.Equal(t, "We make widgets.", m.Description)
	assert.Equal(t, "First paragraph here.", m.FirstParagraph)
}

func TestParseMeta_OGFallback(t *testing.T) {
	t.Parallel()

	m, err := ParseMeta(`<head><meta property="og:description" content="From OG"></head>`)
	require.NoError(t, err)
	assert.Empty(t, m.Title)
	assert.Equal(t, "From OG", m.Description)
	assert.Empty(t, m.FirstParagraph)
}
