// Package extract builds a company profile from crawled pages, with a
// language model when one is configured and a deterministic reader
// otherwise.
package extract

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/crawl"
	"github.com/sells-group/company-profiler/internal/model"
)

// ErrNoContent is returned when the crawl holds no fetched page.
var ErrNoContent = eris.New("extract: no page content")

const maxContactsPerField = 3

// Result is an extracted profile plus how it was produced.
type Result struct {
	Profile  model.Profile
	Strategy string
	// Degraded is set when the primary strategy failed and the fallback ran.
	Degraded bool
}

// Extractor runs the primary strategy, falls back on failure, and applies
// the shared post-processing.
type Extractor struct {
	primary  Strategy
	fallback Strategy
}

// New creates an Extractor. A nil primary means the fallback is always used.
func New(primary Strategy) *Extractor {
	return &Extractor{primary: primary, fallback: HeuristicStrategy{}}
}

// Extract produces a profile for site from res. The Verification Status of
// the result is always UNVERIFIED.
func (e *Extractor) Extract(ctx context.Context, site string, res *model.CrawlResult) (*Result, error) {
	if res.FetchedCount() == 0 {
		return nil, ErrNoContent
	}
	pages := res.FetchedPages()

	out := &Result{}
	if e.primary != nil {
		p, err := e.primary.Extract(ctx, site, pages)
		if err == nil {
			out.Profile = p
			out.Strategy = e.primary.Name()
		} else {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "extract: cancelled")
			}
			zap.L().Warn("extract: primary strategy failed, using fallback",
				zap.Bool("degraded", true),
				zap.String("strategy", e.primary.Name()),
				zap.String("site", site),
				zap.Error(err),
			)
			out.Degraded = true
		}
	}
	if out.Strategy == "" {
		p, err := e.fallback.Extract(ctx, site, pages)
		if err != nil {
			return nil, eris.Wrap(err, "extract: fallback strategy")
		}
		out.Profile = p
		out.Strategy = e.fallback.Name()
	}

	postProcess(&out.Profile, site, res)
	return out, nil
}

func postProcess(p *model.Profile, site string, res *model.CrawlResult) {
	if p.Website == "" {
		p.Website = site
	}

	all := res.Concat()
	if p.Email == "" {
		p.Email = firstN(FindEmails(all), maxContactsPerField)
	}
	if p.Phone == "" {
		p.Phone = firstN(FindPhones(all), maxContactsPerField)
	}

	var socials []string
	for _, u := range res.SocialLinks() {
		if crawl.IsSocialURL(u) {
			socials = append(socials, u)
		}
	}
	if len(socials) > 0 {
		p.SocialLinks = mergeLinks(p.SocialLinks, socials)
	}

	p.VerificationStatus = model.StatusUnverified
}

// mergeLinks unions a comma-separated list with extra links, sorted.
func mergeLinks(existing string, extra []string) string {
	set := make(map[string]bool)
	for _, s := range strings.Split(existing, ",") {
		if s = strings.TrimSpace(s); s != "" {
			set[s] = true
		}
	}
	for _, s := range extra {
		set[s] = true
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
