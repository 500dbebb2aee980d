// Package crawl walks a company site breadth-first and captures raw page
// bodies for extraction.
package crawl

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/fetcher"
	"github.com/sells-group/company-profiler/internal/model"
)

// MaxQueue bounds the number of pending URLs regardless of mode.
const MaxQueue = 50

var socialDomains = []string{
	"linkedin.com",
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"youtube.com",
	"t.me",
}

// IsSocialURL reports whether u points at a social platform.
func IsSocialURL(u string) bool {
	p, err := url.Parse(u)
	if err != nil {
		return false
	}
	host := strings.ToLower(p.Hostname())
	if host == "" {
		return false
	}
	for _, d := range socialDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Crawler fetches pages one at a time through a Fetcher.
type Crawler struct {
	fetcher     fetcher.Fetcher
	deepCeiling int
	log         *zap.Logger
}

// New creates a Crawler. deepCeiling is the page budget of deep mode; values
// <= 0 use model.DefaultDeepPageLimit.
func New(f fetcher.Fetcher, deepCeiling int) *Crawler {
	return &Crawler{
		fetcher:     f,
		deepCeiling: deepCeiling,
		log:         zap.L().With(zap.String("component", "crawl")),
	}
}

// Crawl visits seed and same-site links in FIFO order until the mode's page
// budget is spent or the queue drains. Failed fetches count against the
// budget. Social links found on fetched pages are recorded with an empty
// body. On cancellation the partial result is discarded.
func (c *Crawler) Crawl(ctx context.Context, seed string, mode model.Mode) (*model.CrawlResult, error) {
	limit := mode.PageLimit(c.deepCeiling)
	result := model.NewCrawlResult()

	start := fetcher.Normalize(seed)
	if start == "" {
		return result, nil
	}

	queue := []string{start}
	queued := map[string]bool{visitKey(start): true}
	visited := make(map[string]bool)

	for len(queue) > 0 && len(visited) < limit {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "crawl: cancelled")
		}

		current := queue[0]
		queue = queue[1:]
		key := visitKey(current)
		delete(queued, key)
		if visited[key] {
			continue
		}

		resp, err := c.fetcher.Fetch(ctx, current)
		visited[key] = true
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "crawl: cancelled")
			}
			c.log.Warn("crawl: fetch failed", zap.String("url", current), zap.Error(err))
			continue
		}
		result.Set(current, resp.Body)

		links, err := extractLinks(current, resp.Body)
		if err != nil {
			c.log.Debug("crawl: parse links", zap.String("url", current), zap.Error(err))
			continue
		}

		site := stripWWW(hostOf(current))
		for _, link := range links {
			if IsSocialURL(link) {
				result.Mark(link)
				continue
			}
			lk := visitKey(link)
			if !sameSite(hostOf(link), site) || visited[lk] || queued[lk] {
				continue
			}
			if len(queue) >= MaxQueue {
				continue
			}
			queue = append(queue, link)
			queued[lk] = true
		}
	}

	c.log.Debug("crawl: finished",
		zap.String("seed", start),
		zap.String("mode", mode.String()),
		zap.Int("visited", len(visited)),
		zap.Int("fetched", result.FetchedCount()),
	)
	return result, nil
}

// extractLinks returns the absolute form of every <a href> on the page, with
// fragments removed.
func extractLinks(pageURL, body string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: parse page url")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "crawl: parse html")
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		links = append(links, abs.String())
	})
	return links, nil
}

// visitKey identifies a page for the visited and queued sets. Scheme and
// host are lowercased and an empty path becomes "/", so "https://acme.com"
// and "https://ACME.com/" are one page.
func visitKey(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return u
	}
	p.Scheme = strings.ToLower(p.Scheme)
	p.Host = strings.ToLower(p.Host)
	if p.Path == "" {
		p.Path = "/"
	}
	p.Fragment = ""
	return p.String()
}

func hostOf(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return strings.ToLower(p.Host)
}

func stripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}

// sameSite reports whether host belongs to site once www. is stripped.
// Subdomains of site count as the same site.
func sameSite(host, site string) bool {
	if host == "" || site == "" {
		return false
	}
	host = stripWWW(host)
	return host == site || strings.HasSuffix(host, "."+site)
}
