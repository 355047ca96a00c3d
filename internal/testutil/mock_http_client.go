package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/flexprice/checkout/internal/httpclient"
)

// MockHTTPClient implements httpclient.Client with canned responses per URL suffix
type MockHTTPClient struct {
	mu       sync.RWMutex
	routes   map[string][]MockResponse
	requests []*httpclient.Request
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
	Err        error
}

func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		routes: make(map[string][]MockResponse),
	}
}

// RegisterResponse queues responses for a URL suffix. The last one repeats once the queue drains.
func (m *MockHTTPClient) RegisterResponse(url string, resp ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[url] = append(m.routes[url], resp...)
}

// Send implements the httpclient.Client interface
func (m *MockHTTPClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	var (
		matched MockResponse
		found   bool
	)
	for route, queue := range m.routes {
		if !strings.HasSuffix(req.URL, route) || len(queue) == 0 {
			continue
		}
		matched, found = queue[0], true
		if len(queue) > 1 {
			m.routes[route] = queue[1:]
		}
		break
	}

	if !found {
		return nil, httpclient.NewError(http.StatusNotFound, []byte("Not Found"))
	}
	if matched.Err != nil {
		return nil, matched.Err
	}
	if matched.StatusCode >= 400 {
		return nil, httpclient.NewError(matched.StatusCode, matched.Body)
	}

	return &httpclient.Response{
		StatusCode: matched.StatusCode,
		Body:       matched.Body,
		Headers:    matched.Headers,
	}, nil
}

// Requests returns every request sent so far
func (m *MockHTTPClient) Requests() []*httpclient.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*httpclient.Request(nil), m.requests...)
}

// Clear removes all registered responses
func (m *MockHTTPClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string][]MockResponse)
	m.requests = nil
}
