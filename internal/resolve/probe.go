package resolve

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/company-profiler/internal/fetcher"
	"github.com/sells-group/company-profiler/internal/htmltext"
)

// DefaultMaxProbeHosts bounds how many guessed hosts are probed.
const DefaultMaxProbeHosts = 25

const (
	maxTitleLen = 200
	maxDescLen  = 400
)

// Candidate is a reachable guessed host with its homepage summary.
type Candidate struct {
	Host        string `json:"host"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"desc"`
}

// Prober fetches homepage metadata for guessed hosts.
type Prober struct {
	fetcher     fetcher.Fetcher
	maxHosts    int
	concurrency int
}

// NewProber creates a Prober. maxHosts <= 0 uses DefaultMaxProbeHosts.
func NewProber(f fetcher.Fetcher, maxHosts, concurrency int) *Prober {
	if maxHosts <= 0 {
		maxHosts = DefaultMaxProbeHosts
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Prober{fetcher: f, maxHosts: maxHosts, concurrency: concurrency}
}

// Probe tries https then http for each host and keeps the first reachable
// scheme. Hosts are probed concurrently but results keep the input order;
// unreachable hosts are left out.
func (p *Prober) Probe(ctx context.Context, hosts []string) ([]Candidate, error) {
	if len(hosts) > p.maxHosts {
		hosts = hosts[:p.maxHosts]
	}

	found := make([]*Candidate, len(hosts))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, host := range hosts {
		g.Go(func() error {
			found[i] = p.probeHost(gCtx, host)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "resolve: probe cancelled")
	}

	var out []Candidate
	for _, c := range found {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (p *Prober) probeHost(ctx context.Context, host string) *Candidate {
	for _, scheme := range []string{"https://", "http://"} {
		if ctx.Err() != nil {
			return nil
		}
		u := scheme + host
		resp, err := p.fetcher.Fetch(ctx, u)
		if err != nil {
			continue
		}
		meta, err := htmltext.ParseMeta(resp.Body)
		if err != nil {
			zap.L().Debug("resolve: parse probe page", zap.String("url", u), zap.Error(err))
			continue
		}
		return &Candidate{
			Host:        host,
			URL:         u,
			Title:       htmltext.Truncate(htmltext.CleanText(meta.Title), maxTitleLen),
			Description: htmltext.Truncate(htmltext.CleanText(meta.Description), maxDescLen),
		}
	}
	return nil
}
