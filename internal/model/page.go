package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Mode selects how much of a site the crawler visits. Only ModeRealtime and
// ModeDeep exist; the zero value is ModeRealtime.
type Mode struct {
	deep bool
}

var (
	// ModeRealtime visits at most two pages.
	ModeRealtime = Mode{}
	// ModeDeep visits up to the configured page ceiling.
	ModeDeep = Mode{deep: true}
)

// RealtimePageLimit is the page budget of ModeRealtime.
const RealtimePageLimit = 2

// DefaultDeepPageLimit applies when no deep ceiling is configured.
const DefaultDeepPageLimit = 10

// ParseMode converts "realtime" or "deep" (case-insensitive). Empty input is
// realtime.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "realtime":
		return ModeRealtime, nil
	case "deep":
		return ModeDeep, nil
	default:
		return ModeRealtime, eris.Errorf("model: unknown mode %q", s)
	}
}

// String returns "realtime" or "deep".
func (m Mode) String() string {
	if m.deep {
		return "deep"
	}
	return "realtime"
}

// PageLimit returns the number of pages a crawl in this mode may fetch.
func (m Mode) PageLimit(deepCeiling int) int {
	if !m.deep {
		return RealtimePageLimit
	}
	if deepCeiling <= 0 {
		return DefaultDeepPageLimit
	}
	return deepCeiling
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// CrawledPage is one entry of a crawl result. An empty Body marks a link that
// was observed but deliberately not fetched.
type CrawledPage struct {
	URL  string `json:"url"`
	Body string `json:"body"`
}

// CrawlResult maps URL to page body in discovery order. It is owned by the
// caller of a single crawl and never shared between crawls.
type CrawlResult struct {
	order []string
	pages map[string]string
}

// NewCrawlResult returns an empty result.
func NewCrawlResult() *CrawlResult {
	return &CrawlResult{pages: make(map[string]string)}
}

// Set stores a fetched body. Re-setting an existing URL keeps its position.
func (r *CrawlResult) Set(url, body string) {
	if _, ok := r.pages[url]; !ok {
		r.order = append(r.order, url)
	}
	r.pages[url] = body
}

// Mark records a link as observed without fetching it. A URL that already
// has a body is left untouched.
func (r *CrawlResult) Mark(url string) {
	if _, ok := r.pages[url]; ok {
		return
	}
	r.Set(url, "")
}

// Body returns the stored body for url.
func (r *CrawlResult) Body(url string) (string, bool) {
	b, ok := r.pages[url]
	return b, ok
}

// URLs returns every key in insertion order.
func (r *CrawlResult) URLs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// FetchedPages returns the entries with a non-empty body.
func (r *CrawlResult) FetchedPages() []CrawledPage {
	var out []CrawledPage
	for _, u := range r.order {
		if b := r.pages[u]; b != "" {
			out = append(out, CrawledPage{URL: u, Body: b})
		}
	}
	return out
}

// SocialLinks returns the URLs that were observed but not fetched, in
// insertion order.
func (r *CrawlResult) SocialLinks() []string {
	var out []string
	for _, u := range r.order {
		if r.pages[u] == "" {
			out = append(out, u)
		}
	}
	return out
}

// Len returns the number of entries, fetched or observed.
func (r *CrawlResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// FetchedCount returns the number of entries with a non-empty body.
func (r *CrawlResult) FetchedCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, b := range r.pages {
		if b != "" {
			n++
		}
	}
	return n
}

// Concat joins every body with newlines, in insertion order.
func (r *CrawlResult) Concat() string {
	bodies := make([]string, 0, len(r.order))
	for _, u := range r.order {
		bodies = append(bodies, r.pages[u])
	}
	return strings.Join(bodies, "\n")
}
