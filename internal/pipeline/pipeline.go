// Package pipeline sequences site resolution, crawling, extraction and
// contact verification into a single profile request.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/extract"
	"github.com/sells-group/company-profiler/internal/fetcher"
	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/resolve"
	"github.com/sells-group/company-profiler/internal/verify"
)

var (
	// ErrFetchFailed means the crawl produced no fetched page.
	ErrFetchFailed = eris.New("pipeline: fetch failed")
	// ErrUnresolvableCompany means no site could be derived from the name.
	ErrUnresolvableCompany = eris.New("pipeline: unresolvable company")
	// ErrExtractionFailed means no extraction path produced a profile.
	ErrExtractionFailed = eris.New("pipeline: extraction failed")
	// ErrInvalidInput means the input has neither a URL nor a company name.
	ErrInvalidInput = eris.New("pipeline: url or company name required")
)

// Resolver finds a site URL for a company name.
type Resolver interface {
	Resolve(ctx context.Context, company, geography string) (string, error)
}

// Crawler collects pages from a site.
type Crawler interface {
	Crawl(ctx context.Context, seed string, mode model.Mode) (*model.CrawlResult, error)
}

// Extractor turns crawled pages into a profile.
type Extractor interface {
	Extract(ctx context.Context, site string, res *model.CrawlResult) (*extract.Result, error)
}

// Outcome is a finished profile with the intermediate results that produced
// it.
type Outcome struct {
	Profile  model.Profile `json:"profile"`
	Site     string        `json:"site"`
	Report   verify.Report `json:"verification"`
	Strategy string        `json:"strategy"`
	Degraded bool          `json:"degraded"`
	Pages    int           `json:"pages"`
}

// Pipeline holds the collaborators of one profile request. It keeps no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	resolver  Resolver
	crawler   Crawler
	extractor Extractor
}

// New creates a Pipeline. A nil resolver rejects name-only input.
func New(resolver Resolver, crawler Crawler, extractor Extractor) *Pipeline {
	return &Pipeline{resolver: resolver, crawler: crawler, extractor: extractor}
}

// ResolveAndExtract returns the verified profile for in.
func (p *Pipeline) ResolveAndExtract(ctx context.Context, in model.Input) (*model.Profile, error) {
	out, err := p.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	return &out.Profile, nil
}

// Run resolves, crawls, extracts and verifies. A crawl with no fetched page
// fails with ErrFetchFailed before extraction runs.
func (p *Pipeline) Run(ctx context.Context, in model.Input) (*Outcome, error) {
	log := zap.L().With(
		zap.String("url", in.URL),
		zap.String("company", in.CompanyName),
		zap.String("mode", in.Mode.String()),
	)
	start := time.Now()

	site, err := p.site(ctx, in, log)
	if err != nil {
		return nil, err
	}

	phase := time.Now()
	res, err := p.crawler.Crawl(ctx, site, in.Mode)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: crawl")
	}
	log.Info("pipeline: crawl complete",
		zap.String("site", site),
		zap.Int("fetched", res.FetchedCount()),
		zap.Int("entries", res.Len()),
		zap.Duration("duration", time.Since(phase)),
	)
	if res.FetchedCount() == 0 {
		return nil, eris.Wrapf(ErrFetchFailed, "no page fetched from %s", site)
	}

	phase = time.Now()
	ext, err := p.extractor.Extract(ctx, site, res)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "pipeline: extract")
		}
		return nil, eris.Wrapf(ErrExtractionFailed, "%s: %v", site, err)
	}
	log.Info("pipeline: extraction complete",
		zap.String("strategy", ext.Strategy),
		zap.Bool("degraded", ext.Degraded),
		zap.Duration("duration", time.Since(phase)),
	)

	profile, report := verify.Verify(ext.Profile, res, site)
	log.Info("pipeline: profile ready",
		zap.String("status", profile.VerificationStatus),
		zap.Duration("total", time.Since(start)),
	)

	return &Outcome{
		Profile:  profile,
		Site:     site,
		Report:   report,
		Strategy: ext.Strategy,
		Degraded: ext.Degraded,
		Pages:    res.FetchedCount(),
	}, nil
}

func (p *Pipeline) site(ctx context.Context, in model.Input, log *zap.Logger) (string, error) {
	if in.HasURL() {
		return fetcher.Normalize(in.URL), nil
	}
	if !in.HasName() {
		return "", ErrInvalidInput
	}
	if p.resolver == nil {
		return "", eris.Wrap(ErrUnresolvableCompany, "no resolver configured")
	}

	phase := time.Now()
	site, err := p.resolver.Resolve(ctx, in.CompanyName, in.Geography)
	if err != nil {
		if errors.Is(err, resolve.ErrNoCandidates) {
			return "", eris.Wrapf(ErrUnresolvableCompany, "%q", in.CompanyName)
		}
		return "", eris.Wrap(err, "pipeline: resolve")
	}
	if site == "" {
		return "", eris.Wrapf(ErrUnresolvableCompany, "%q", in.CompanyName)
	}
	log.Info("pipeline: site resolved",
		zap.String("site", site),
		zap.Duration("duration", time.Since(phase)),
	)
	return fetcher.Normalize(site), nil
}

// IsClientError reports whether err is caused by the request rather than by
// the service.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrFetchFailed) ||
		errors.Is(err, ErrUnresolvableCompany)
}
