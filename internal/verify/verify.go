// Package verify scores extracted contact details by how often they recur
// across the crawled pages of a site.
package verify

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/extract"
	"github.com/sells-group/company-profiler/internal/fetcher"
	"github.com/sells-group/company-profiler/internal/model"
)

const (
	minPages        = 2
	maxConfidence   = 0.95
	domainBonus     = 0.07
	maxDomainScore  = 0.98
	sizeBonusPages  = 3
	stateUnverified = model.StatusUnverified
)

// Signal is the verification outcome for one contact channel.
type Signal struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Confidence float64 `json:"confidence"`
	Verified   bool    `json:"verified"`
}

// State renders the signal as it appears in the status string.
func (s Signal) State() string {
	if !s.Verified {
		return stateUnverified
	}
	return fmt.Sprintf("VERIFIED (AI %.2f)", s.Confidence)
}

// Report summarises a verification run.
type Report struct {
	Email      Signal `json:"email"`
	Phone      Signal `json:"phone"`
	TotalPages int    `json:"total_pages"`
}

// Status returns "Phone: <state>; Email: <state>".
func (r Report) Status() string {
	return "Phone: " + r.Phone.State() + "; Email: " + r.Email.State()
}

// Confidence scores a value seen on count distinct pages out of total
// fetched pages.
func Confidence(count, total int) float64 {
	if count <= 0 {
		return 0
	}
	score := 0.5 + min(0.4, float64(count-1)*0.15)
	if total >= sizeBonusPages {
		score += 0.05
	}
	return min(maxConfidence, score)
}

// tally counts distinct pages per normalized value, remembering first-seen
// order for tie breaks.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) addPage(values []string, norm func(string) string) {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		n := norm(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		if _, ok := t.counts[n]; !ok {
			t.order = append(t.order, n)
		}
		t.counts[n]++
	}
}

// top returns the most frequent value; the earliest seen wins ties.
func (t *tally) top() (string, int) {
	best, bestCount := "", 0
	for _, v := range t.order {
		if c := t.counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best, bestCount
}

// Verify cross-checks the profile's Email and Phone against res. It writes
// the Verification Status and fills Email or Phone only when they are empty.
// It never fails.
func Verify(p model.Profile, res *model.CrawlResult, site string) (model.Profile, Report) {
	emails, phones := newTally(), newTally()
	var rep Report
	if res != nil {
		for _, page := range res.FetchedPages() {
			emails.addPage(extract.FindEmails(page.Body), strings.ToLower)
			phones.addPage(extract.FindPhones(page.Body), NormalizePhone)
			rep.TotalPages++
		}
	}

	siteDomain := SiteDomain(site)
	rep.Email = decide(emails, strings.ToLower(firstItem(p.Email)), rep.TotalPages, func(v string) float64 {
		if domainMatches(v, siteDomain) {
			return domainBonus
		}
		return 0
	})
	rep.Phone = decide(phones, NormalizePhone(firstItem(p.Phone)), rep.TotalPages, nil)

	if rep.Email.Verified && p.Email == "" {
		p.Email = rep.Email.Value
	}
	if rep.Phone.Verified && p.Phone == "" {
		p.Phone = rep.Phone.Value
	}
	p.VerificationStatus = rep.Status()

	zap.L().Debug("verify: contacts checked",
		zap.String("site", site),
		zap.Int("pages", rep.TotalPages),
		zap.String("status", p.VerificationStatus),
	)
	return p, rep
}

// decide applies the two-tier policy: the extracted value first, then the
// most frequent value on the site.
func decide(t *tally, extracted string, total int, bonus func(string) float64) Signal {
	pick := func(v string, c int) Signal {
		conf := Confidence(c, total)
		if bonus != nil {
			if b := bonus(v); b > 0 {
				conf = min(maxDomainScore, conf+b)
			}
		}
		return Signal{Value: v, Count: c, Confidence: conf, Verified: true}
	}

	if extracted != "" {
		if c := t.counts[extracted]; c >= minPages {
			return pick(extracted, c)
		}
	}
	if v, c := t.top(); c >= minPages {
		return pick(v, c)
	}
	return Signal{Value: extracted, Count: t.counts[extracted]}
}

// NormalizePhone keeps digits, preserving a "+" that precedes every digit.
func NormalizePhone(s string) string {
	var digits strings.Builder
	plus := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+' && digits.Len() == 0:
			plus = true
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	if plus {
		return "+" + digits.String()
	}
	return digits.String()
}

// SiteDomain returns the lowercased host of site without a "www." prefix.
func SiteDomain(site string) string {
	u, err := url.Parse(fetcher.Normalize(site))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func domainMatches(email, siteDomain string) bool {
	if siteDomain == "" {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	d := strings.ToLower(email[at+1:])
	return d == siteDomain || strings.HasSuffix(d, "."+siteDomain)
}

func firstItem(list string) string {
	first, _, _ := strings.Cut(list, ",")
	return strings.TrimSpace(first)
}
