package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/bulk"
	"github.com/sells-group/company-profiler/internal/config"
	"github.com/sells-group/company-profiler/internal/crawl"
	"github.com/sells-group/company-profiler/internal/extract"
	"github.com/sells-group/company-profiler/internal/fetcher"
	"github.com/sells-group/company-profiler/internal/pipeline"
	"github.com/sells-group/company-profiler/internal/report"
	"github.com/sells-group/company-profiler/internal/resilience"
	"github.com/sells-group/company-profiler/internal/resolve"
	"github.com/sells-group/company-profiler/internal/store"
	anthropicpkg "github.com/sells-group/company-profiler/pkg/anthropic"
	"github.com/sells-group/company-profiler/pkg/bing"
	"github.com/sells-group/company-profiler/pkg/google"
)

// pipelineEnv holds the store, the pipeline and the report settings needed
// by the scrape/bulk/serve commands.
type pipelineEnv struct {
	Store     store.Store
	Pipeline  *pipeline.Pipeline
	Bulk      *bulk.Runner
	Renderer  report.Renderer
	ExportDir string
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline opens the store and wires every client into a Pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	p := buildPipeline(cfg)
	return &pipelineEnv{
		Store:     st,
		Pipeline:  p,
		Bulk:      bulk.NewRunner(p, cfg.Bulk.Concurrency),
		Renderer:  report.NewXLSXRenderer(),
		ExportDir: cfg.Export.Dir,
	}, nil
}

// buildPipeline constructs the pipeline from configuration. Missing API keys
// disable the matching component and its deterministic fallback is used.
func buildPipeline(c *config.Config) *pipeline.Pipeline {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:        c.Crawl.UserAgent,
		Timeout:          c.Crawl.Timeout(),
		SoftBlockMinBody: c.Crawl.SoftBlockMinBody,
		RatePerHost:      c.Crawl.RatePerHost,
		Attempts:         c.Crawl.RetryAttempts,
	})

	var ai anthropicpkg.Client
	if c.Anthropic.Key != "" {
		var opts []anthropicpkg.Option
		if c.Anthropic.BaseURL != "" {
			opts = append(opts, anthropicpkg.WithBaseURL(c.Anthropic.BaseURL))
		}
		ai = anthropicpkg.NewClient(c.Anthropic.Key, opts...)
	} else {
		zap.L().Info("anthropic key not set, using deterministic selector and extractor")
	}

	searchOpts := resolve.SearchOptions{
		Timeout: time.Duration(c.Resolve.SearchTimeoutSecs) * time.Second,
		Retry:   resilience.RetryConfig{MaxAttempts: c.Resolve.SearchRetries},
	}
	var providers []resolve.Provider
	if c.Google.Enabled() {
		providers = append(providers, resolve.NewGoogleProvider(
			google.NewClient(c.Google.Key, c.Google.CSEID, google.WithBaseURL(c.Google.BaseURL)), searchOpts))
	}
	if c.Bing.Key != "" {
		providers = append(providers, resolve.NewBingProvider(
			bing.NewClient(c.Bing.Key, bing.WithBaseURL(c.Bing.BaseURL), bing.WithMarket(c.Bing.Market)), searchOpts))
	}

	var (
		selector *resolve.Selector
		primary  extract.Strategy
	)
	if ai != nil {
		breaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig())
		selector = resolve.NewSelector(ai, resolve.SelectorConfig{Model: c.Anthropic.Model}, breaker)
		primary = extract.NewAIStrategy(ai, extract.AIConfig{Model: c.Anthropic.Model, MaxTokens: c.Anthropic.MaxTokens}, breaker)
	}

	resolver := resolve.NewResolver(
		providers,
		resolve.NewProber(f, c.Resolve.MaxProbeHosts, c.Resolve.ProbeConcurrency),
		selector,
	)
	return pipeline.New(resolver, crawl.New(f, c.Crawl.DeepMaxPages), extract.New(primary))
}
