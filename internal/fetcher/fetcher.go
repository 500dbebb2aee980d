// Package fetcher normalizes user-supplied site addresses and retrieves pages
// by trying scheme and www variants of a URL in priority order.
package fetcher

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
)

// ErrNoResponse is returned when no URL variant produced an acceptable
// response.
var ErrNoResponse = eris.New("fetcher: no acceptable response")

// Response is the first accepted response for a fetch.
type Response struct {
	// URL is the candidate that was requested.
	URL string
	// FinalURL is the URL after redirects.
	FinalURL   string
	StatusCode int
	Header     http.Header
	Body       string
}

// Fetcher retrieves a page, trying URL variants until one is accepted.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}
