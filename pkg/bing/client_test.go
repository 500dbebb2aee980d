package bing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sub-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		q := r.URL.Query()
		assert.Equal(t, "Acme official site", q.Get("q"))
		assert.Equal(t, "false", q.Get("textDecorations"))
		assert.Equal(t, "en-US", q.Get("mkt"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"webPages":{"value":[{"name":"Acme","url":"https://www.acme.com/"}]}}`))
	}))
	defer srv.Close()

	client := NewClient("sub-key", WithBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), "Acme official site")

	require.NoError(t, err)
	assert.Equal(t, "https://www.acme.com/", resp.FirstURL())
}

func TestSearch_Market(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en-IN", r.URL.Query().Get("mkt"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("sub-key", WithBaseURL(srv.URL), WithMarket("en-IN"))
	resp, err := client.Search(context.Background(), "q")

	require.NoError(t, err)
	assert.Empty(t, resp.FirstURL())
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"401"}}`))
	}))
	defer srv.Close()

	client := NewClient("bad", WithBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), "q")

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "bing: unexpected status 401")
}
