package fetcher

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/sells-group/company-profiler/internal/resilience"
)

// DesktopUserAgent is sent with every page request.
const DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

const (
	defaultTimeout = 15 * time.Second
	// DefaultSoftBlockMinBody is the body length (in characters) above which a
	// 401/403 page is still kept for scraping.
	DefaultSoftBlockMinBody = 500
	defaultMaxBodyBytes     = 2 * 1024 * 1024
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	// Timeout bounds each candidate request.
	Timeout          time.Duration
	SoftBlockMinBody int
	MaxBodyBytes     int64
	// RatePerHost limits requests per second to a single host. Zero disables
	// the limiter.
	RatePerHost float64
	// Attempts is the number of tries per candidate for transient transport
	// errors. Values below 1 mean a single try.
	Attempts  int
	Transport http.RoundTripper
}

// HTTPFetcher implements Fetcher with net/http.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher, filling unset options with defaults.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DesktopUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.SoftBlockMinBody <= 0 {
		opts.SoftBlockMinBody = DefaultSoftBlockMinBody
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch tries each candidate of rawURL in order and returns the first
// accepted response. Candidates are never tried in parallel and never twice.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	for _, candidate := range Candidates(rawURL) {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "fetcher: cancelled")
		}

		resp, err := resilience.DoVal(ctx, resilience.RetryConfig{
			MaxAttempts:    f.opts.Attempts,
			InitialBackoff: 300 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			OnRetry:        resilience.RetryLogger("fetcher", candidate),
		}, func(ctx context.Context) (*Response, error) {
			return f.get(ctx, candidate)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "fetcher: cancelled")
			}
			zap.L().Debug("fetcher: candidate failed",
				zap.String("url", candidate),
				zap.Error(err),
			)
			continue
		}

		if f.accept(resp) {
			return resp, nil
		}
		zap.L().Debug("fetcher: candidate rejected",
			zap.String("url", candidate),
			zap.Int("status", resp.StatusCode),
			zap.Int("body_len", len(resp.Body)),
		)
	}
	return nil, ErrNoResponse
}

// accept reports whether a response is usable. 401/403 pages with a
// substantial body are soft blocks that often still carry the site content.
func (f *HTTPFetcher) accept(resp *Response) bool {
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return true
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return utf8.RuneCountInString(resp.Body) > f.opts.SoftBlockMinBody
	}
	return false
}

func (f *HTTPFetcher) get(ctx context.Context, target string) (*Response, error) {
	if err := f.wait(ctx, target); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: get")
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read body")
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		URL:        target,
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       decodeBody(raw, resp.Header.Get("Content-Type")),
	}, nil
}

// decodeBody converts the body to UTF-8 using the declared or sniffed charset.
func decodeBody(raw []byte, contentType string) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func (f *HTTPFetcher) wait(ctx context.Context, target string) error {
	if f.opts.RatePerHost <= 0 {
		return nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil
	}
	f.mu.Lock()
	lim, ok := f.limiters[u.Host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(f.opts.RatePerHost), 1)
		f.limiters[u.Host] = lim
	}
	f.mu.Unlock()
	if err := lim.Wait(ctx); err != nil {
		return eris.Wrap(err, "fetcher: rate limiter wait")
	}
	return nil
}
