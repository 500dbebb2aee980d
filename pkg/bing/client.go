// Package bing is a client for the Bing Web Search v7 API.
package bing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/resilience"
)

const defaultBaseURL = "https://api.bing.microsoft.com/v7.0/search"

// Client performs web searches.
type Client interface {
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

// SearchResponse is the subset of the Bing response we read.
type SearchResponse struct {
	WebPages WebPages `json:"webPages"`
}

// WebPages holds the organic results.
type WebPages struct {
	Value []WebPage `json:"value"`
}

// WebPage is one organic hit.
type WebPage struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// FirstURL returns the URL of the top hit, or "" when there are none.
func (r *SearchResponse) FirstURL() string {
	if r == nil || len(r.WebPages.Value) == 0 {
		return ""
	}
	return r.WebPages.Value[0].URL
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API endpoint.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithMarket overrides the default en-US market.
func WithMarket(mkt string) Option {
	return func(c *httpClient) {
		c.market = mkt
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	market  string
	http    *http.Client
}

// NewClient creates a Bing Web Search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		market:  "en-US",
		http:    &http.Client{Timeout: 12 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("textDecorations", "false")
	params.Set("mkt", c.market)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "bing: create request")
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "bing: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "bing: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.StatusError("bing", resp.StatusCode, string(body))
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "bing: unmarshal response")
	}
	return &result, nil
}
