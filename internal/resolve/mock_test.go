package resolve

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/company-profiler/internal/fetcher"
)

// MockProvider is a testify mock for Provider.
type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) Search(ctx context.Context, query string) (string, error) {
	args := m.Called(ctx, query)
	return args.String(0), args.Error(1)
}

// mapFetcher serves fixed bodies and records requested URLs.
type mapFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *mapFetcher) Fetch(_ context.Context, u string) (*fetcher.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, u)
	body, ok := f.pages[u]
	if !ok {
		return nil, fetcher.ErrNoResponse
	}
	return &fetcher.Response{URL: u, FinalURL: u, StatusCode: 200, Body: body}, nil
}

func (f *mapFetcher) called(u string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == u {
			return true
		}
	}
	return false
}
