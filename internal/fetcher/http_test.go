package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResponse is a canned reply keyed by full request URL.
type stubResponse struct {
	status int
	body   string
	err    error
}

// stubTransport answers requests from a fixed table and records the order of
// requested URLs.
type stubTransport struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	calls     []string
	agents    []string
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req.URL.String())
	s.agents = append(s.agents, req.Header.Get("User-Agent"))
	r, ok := s.responses[req.URL.String()]
	s.mu.Unlock()

	if !ok {
		return nil, errors.New("connection refused")
	}
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:       io.NopCloser(strings.NewReader(r.body)),
		Request:    req,
	}, nil
}

func newStubFetcher(responses map[string]stubResponse) (*HTTPFetcher, *stubTransport) {
	st := &stubTransport{responses: responses}
	return NewHTTPFetcher(HTTPOptions{Transport: st, Timeout: 2 * time.Second}), st
}

func TestFetch_FirstCandidateWins(t *testing.T) {
	f, st := newStubFetcher(map[string]stubResponse{
		"https://acme.test": {status: 200, body: "<html>home</html>"},
		"http://acme.test":  {status: 200, body: "<html>other</html>"},
	})

	resp, err := f.Fetch(context.Background(), "acme.test")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.test", resp.URL)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "<html>home</html>", resp.Body)
	assert.Equal(t, []string{"https://acme.test"}, st.calls)
	assert.Equal(t, DesktopUserAgent, st.agents[0])
}

func TestFetch_FallsThroughTransportErrors(t *testing.T) {
	f, st := newStubFetcher(map[string]stubResponse{
		"https://www.acme.test": {status: 200, body: "www page"},
	})

	resp, err := f.Fetch(context.Background(), "acme.test")
	require.NoError(t, err)
	assert.Equal(t, "https://www.acme.test", resp.URL)
	assert.Equal(t, []string{
		"https://acme.test",
		"http://acme.test",
		"https://www.acme.test",
	}, st.calls)
}

func TestFetch_SoftBlockRejectedForShortBody(t *testing.T) {
	f, st := newStubFetcher(map[string]stubResponse{
		"https://acme.test":     {status: 403, body: "forbidden!"},
		"http://acme.test":      {status: 404, body: strings.Repeat("x", 2000)},
		"https://www.acme.test": {status: 200, body: "real site"},
	})

	resp, err := f.Fetch(context.Background(), "acme.test")
	require.NoError(t, err)
	assert.Equal(t, "https://www.acme.test", resp.URL)
	assert.Equal(t, "real site", resp.Body)
	assert.Len(t, st.calls, 3)
}

func TestFetch_SoftBlockAcceptedForLongBody(t *testing.T) {
	long := strings.Repeat("a", DefaultSoftBlockMinBody+1)
	f, _ := newStubFetcher(map[string]stubResponse{
		"https://acme.test": {status: 403, body: long},
	})

	resp, err := f.Fetch(context.Background(), "acme.test")
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, long, resp.Body)
}

func TestFetch_SoftBlockBoundary(t *testing.T) {
	exact := strings.Repeat("a", DefaultSoftBlockMinBody)
	f, _ := newStubFetcher(map[string]stubResponse{
		"https://acme.test": {status: 401, body: exact},
	})

	_, err := f.Fetch(context.Background(), "acme.test")
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestFetch_AllCandidatesFail(t *testing.T) {
	f, st := newStubFetcher(map[string]stubResponse{
		"https://acme.test": {status: 500, body: "boom"},
	})

	_, err := f.Fetch(context.Background(), "acme.test")
	assert.ErrorIs(t, err, ErrNoResponse)
	assert.Equal(t, Candidates("acme.test"), st.calls)
}

func TestFetch_RedirectStatusAccepted(t *testing.T) {
	f, _ := newStubFetcher(map[string]stubResponse{
		"https://acme.test": {status: 304, body: ""},
	})

	resp, err := f.Fetch(context.Background(), "acme.test")
	require.NoError(t, err)
	assert.Equal(t, 304, resp.StatusCode)
}

func TestFetch_ContextCancelled(t *testing.T) {
	f, st := newStubFetcher(map[string]stubResponse{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, "acme.test")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, st.calls)
}

func TestFetch_RealServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<title>Acme</title>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{UserAgent: "test-agent", Timeout: 2 * time.Second})
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, resp.URL)
	assert.Equal(t, "<title>Acme</title>", resp.Body)
}

func TestFetch_RatePerHost(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{
		RatePerHost: 1000,
		Transport: &stubTransport{responses: map[string]stubResponse{
			"https://acme.test": {status: 200, body: "ok"},
		}},
	})

	for range 3 {
		_, err := f.Fetch(context.Background(), "acme.test")
		require.NoError(t, err)
	}
	assert.Len(t, f.limiters, 1)
}

func TestDecodeBody_Latin1(t *testing.T) {
	t.Parallel()

	raw := []byte("caf\xe9")
	assert.Equal(t, "café", decodeBody(raw, "text/html; charset=iso-8859-1"))
	assert.Equal(t, "plain", decodeBody([]byte("plain"), ""))
}
