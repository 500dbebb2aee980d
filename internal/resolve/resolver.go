// Package resolve finds a company's official website from its name, either
// through web search or by guessing and probing domains.
package resolve

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoCandidates is returned when no hostname can be derived from the name.
var ErrNoCandidates = eris.New("resolve: no domain candidates for company name")

// Resolver turns a company name into a site URL.
type Resolver struct {
	providers []Provider
	prober    *Prober
	selector  *Selector
}

// NewResolver creates a Resolver. Providers are tried in the given order.
func NewResolver(providers []Provider, prober *Prober, selector *Selector) *Resolver {
	return &Resolver{providers: providers, prober: prober, selector: selector}
}

// Query builds the search query for a company.
func Query(company, geography string) string {
	return strings.TrimSpace(company + " official site " + geography)
}

// Resolve returns the official site URL for company. Search results are
// returned verbatim; otherwise domains are guessed, probed, and handed to
// the selector. If nothing answers, the first guess is returned with an
// https scheme.
func (r *Resolver) Resolve(ctx context.Context, company, geography string) (string, error) {
	if site := r.search(ctx, Query(company, geography)); site != "" {
		return site, nil
	}
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "resolve: cancelled")
	}
	return r.resolveByGuess(ctx, company, geography)
}

func (r *Resolver) search(ctx context.Context, query string) string {
	for _, p := range r.providers {
		link, err := p.Search(ctx, query)
		if err != nil {
			zap.L().Warn("resolve: search failed",
				zap.String("provider", p.Name()),
				zap.String("query", query),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				return ""
			}
			continue
		}
		if link != "" {
			zap.L().Debug("resolve: search hit",
				zap.String("provider", p.Name()),
				zap.String("url", link),
			)
			return link
		}
	}
	return ""
}

func (r *Resolver) resolveByGuess(ctx context.Context, company, geography string) (string, error) {
	hosts := Candidates(company, geography)
	if len(hosts) == 0 {
		return "", ErrNoCandidates
	}

	if r.prober != nil {
		candidates, err := r.prober.Probe(ctx, hosts)
		if err != nil {
			return "", err
		}
		if len(candidates) > 0 {
			if r.selector != nil {
				if site := r.selector.Select(ctx, company, geography, candidates); site != "" {
					return site, nil
				}
			}
			return candidates[0].URL, nil
		}
	}

	zap.L().Info("resolve: no reachable candidate, using first guess",
		zap.String("company", company),
		zap.String("host", hosts[0]),
	)
	return "https://" + hosts[0], nil
}
