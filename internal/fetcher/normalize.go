package fetcher

import (
	"net/url"
	"strings"
)

// Normalize turns a user-supplied site string into an absolute URL. A missing
// scheme becomes https, and a bare host that parses as a path is moved into
// the host position. Unparseable input is returned unchanged so the failure
// surfaces at fetch time.
func Normalize(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return u
	}
	if !hasHTTPScheme(u) {
		u = "https://" + u
	}
	p, err := url.Parse(u)
	if err != nil {
		return raw
	}
	if p.Host == "" && p.Path != "" {
		u = "https://" + strings.TrimLeft(p.Path, "/")
	}
	return u
}

// Candidates returns the ordered, de-duplicated URL variants to try for raw:
// as given, forced https, forced http, then www-prefixed https and http, then
// www-stripped https. Only the first variant keeps the query string.
func Candidates(raw string) []string {
	base := Normalize(raw)
	p, err := url.Parse(base)
	if err != nil || p.Host == "" {
		return []string{base}
	}

	host := p.Host
	noWWW := strings.TrimPrefix(host, "www.")
	withWWW := host
	if !strings.HasPrefix(host, "www.") {
		withWWW = "www." + host
	}
	rest := p.EscapedPath()

	list := []string{
		base,
		swapScheme(base, "http://", "https://"),
		swapScheme(base, "https://", "http://"),
		"https://" + withWWW + rest,
		"http://" + withWWW + rest,
		"https://" + noWWW + rest,
	}
	return dedupe(list)
}

// Host returns the lowercase host of a normalized URL with any leading www.
// removed, or "" when it cannot be parsed.
func Host(raw string) string {
	p, err := url.Parse(Normalize(raw))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(p.Hostname()), "www.")
}

func hasHTTPScheme(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func swapScheme(u, from, to string) string {
	if strings.HasPrefix(strings.ToLower(u), from) {
		return to + u[len(from):]
	}
	return u
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
