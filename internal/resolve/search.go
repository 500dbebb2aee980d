package resolve

import (
	"context"
	"time"

	"github.com/sells-group/company-profiler/internal/resilience"
	"github.com/sells-group/company-profiler/pkg/bing"
	"github.com/sells-group/company-profiler/pkg/google"
)

// DefaultSearchTimeout bounds a single search API call.
const DefaultSearchTimeout = 12 * time.Second

// Provider is a web search backend. Search returns the first result URL, or
// "" when the query has no results.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (string, error)
}

// SearchOptions applies to every built-in provider.
type SearchOptions struct {
	Timeout time.Duration
	Retry   resilience.RetryConfig
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultSearchTimeout
	}
	if o.Retry.MaxAttempts <= 0 {
		o.Retry.MaxAttempts = 1
	}
	return o
}

// call runs fn with the per-call timeout and retries transient failures.
func (o SearchOptions) call(ctx context.Context, name string, fn func(ctx context.Context) (string, error)) (string, error) {
	retry := o.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger(name, "search")
	}
	return resilience.DoVal(ctx, retry, func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, o.Timeout)
		defer cancel()
		return fn(callCtx)
	})
}

// GoogleProvider searches with Google Custom Search.
type GoogleProvider struct {
	client google.Client
	opts   SearchOptions
}

// NewGoogleProvider wraps a Custom Search client.
func NewGoogleProvider(client google.Client, opts SearchOptions) *GoogleProvider {
	return &GoogleProvider{client: client, opts: opts.withDefaults()}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string { return "google" }

// Search implements Provider.
func (p *GoogleProvider) Search(ctx context.Context, query string) (string, error) {
	return p.opts.call(ctx, p.Name(), func(ctx context.Context) (string, error) {
		resp, err := p.client.Search(ctx, query)
		if err != nil {
			return "", err
		}
		return resp.FirstLink(), nil
	})
}

// BingProvider searches with Bing Web Search.
type BingProvider struct {
	client bing.Client
	opts   SearchOptions
}

// NewBingProvider wraps a Bing client.
func NewBingProvider(client bing.Client, opts SearchOptions) *BingProvider {
	return &BingProvider{client: client, opts: opts.withDefaults()}
}

// Name implements Provider.
func (p *BingProvider) Name() string { return "bing" }

// Search implements Provider.
func (p *BingProvider) Search(ctx context.Context, query string) (string, error) {
	return p.opts.call(ctx, p.Name(), func(ctx context.Context) (string, error) {
		resp, err := p.client.Search(ctx, query)
		if err != nil {
			return "", err
		}
		return resp.FirstURL(), nil
	})
}
