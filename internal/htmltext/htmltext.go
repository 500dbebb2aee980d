// Package htmltext turns fetched HTML into the plain text and metadata the
// resolver and extractor work with.
package htmltext

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = func() *bluemonday.Policy {
		p := bluemonday.StrictPolicy()
		p.AddSpaceWhenStrippingTag(true)
		return p
	}()
	spaceRe = regexp.MustCompile(`\s+`)
)

// CleanText strips every tag, decodes entities, and collapses whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(strict.Sanitize(s))
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// Meta is the summary of a page head.
type Meta struct {
	Title          string
	Description    string
	FirstParagraph string
}

// ParseMeta reads the <title>, the name=description or og:description meta
// tag, and the text of the first <p>. Values are whitespace-trimmed but not
// truncated.
func ParseMeta(body string) (Meta, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Meta{}, err
	}

	m := Meta{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok && strings.TrimSpace(desc) != "" {
		m.Description = strings.TrimSpace(desc)
	} else if og, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		m.Description = strings.TrimSpace(og)
	}
	m.FirstParagraph = strings.TrimSpace(spaceRe.ReplaceAllString(doc.Find("p").First().Text(), " "))
	return m, nil
}
