package extract

import (
	"regexp"
	"sort"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)
)

// FindEmails returns the distinct email-like strings in text, sorted.
func FindEmails(text string) []string {
	return sortedUnique(emailRe.FindAllString(text, -1))
}

// FindPhones returns the distinct phone-like strings in text, sorted.
func FindPhones(text string) []string {
	return sortedUnique(phoneRe.FindAllString(text, -1))
}

func sortedUnique(matches []string) []string {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// firstN joins up to n values with ", ", skipping values that repeat
// case-insensitively.
func firstN(values []string, n int) string {
	seen := make(map[string]bool)
	var picked []string
	for _, v := range values {
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		picked = append(picked, v)
		if len(picked) == n {
			break
		}
	}
	return strings.Join(picked, ", ")
}
