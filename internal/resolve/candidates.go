package resolve

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripSuffixes is applied in order, so multi-word forms come first.
var stripSuffixes = []string{
	"private limited", "pvt ltd", "pvt. ltd.", "limited", "ltd", "llp",
	"inc", "inc.", "co", "co.", "company", "solutions", "solution",
	"technologies", "technology", "tech", "labs", "studio", "studios",
	"group", "services", "service", "global", "international",
}

var candidateTLDs = []string{"com", "co", "io", "ai", "net", "org", "in", "co.in", "info", "biz", "tech"}

var (
	suffixRes  = compileSuffixes(stripSuffixes)
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9 ]`)
	multiSpace = regexp.MustCompile(`\s+`)
)

func compileSuffixes(list []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(list))
	for _, s := range list {
		pattern := `\b` + regexp.QuoteMeta(s)
		// A trailing \b after punctuation can never match at end of input.
		if last := s[len(s)-1]; last >= 'a' && last <= 'z' {
			pattern += `\b`
		}
		out = append(out, regexp.MustCompile(pattern))
	}
	return out
}

// foldDiacritics maps "Café Ñandú" to "Cafe Nandu".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NameTokens lowercases name, removes corporate suffixes and punctuation,
// and splits what is left on whitespace.
func NameTokens(name string) []string {
	n := strings.ToLower(foldDiacritics(name))
	for _, re := range suffixRes {
		n = re.ReplaceAllString(n, " ")
	}
	n = nonAlnumRe.ReplaceAllString(n, " ")
	n = strings.TrimSpace(multiSpace.ReplaceAllString(n, " "))
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

// Candidates guesses hostnames for a company name: the joined tokens on every
// candidate TLD, plus the dash-joined form when there is more than one token.
// The compact .com host always comes first. Geography does not affect the
// result.
func Candidates(name, _ string) []string {
	parts := NameTokens(name)
	if len(parts) == 0 {
		return nil
	}
	compact := strings.Join(parts, "")
	dashed := strings.Join(parts, "-")

	seen := make(map[string]bool)
	var hosts []string
	add := func(h string) {
		if !seen[h] {
			seen[h] = true
			hosts = append(hosts, h)
		}
	}
	for _, tld := range candidateTLDs {
		add(compact + "." + tld)
		if len(parts) > 1 {
			add(dashed + "." + tld)
		}
	}
	return hosts
}
