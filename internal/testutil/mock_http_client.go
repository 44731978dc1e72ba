package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/flexprice/tariff/internal/httpclient"
)

// MockHTTPClient implements a mock HTTP client for testing
type MockHTTPClient struct {
	mu       sync.RWMutex
	routes   map[string]MockResponse
	requests []*httpclient.Request
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		routes: make(map[string]MockResponse),
	}
}

// RegisterResponse registers a mock response for a given URL path suffix
func (m *MockHTTPClient) RegisterResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[path] = resp
}

// RegisterJSONResponse is a helper to register a 200 JSON response
func (m *MockHTTPClient) RegisterJSONResponse(path string, body string) {
	m.RegisterResponse(path, MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	})
}

// Send implements the httpclient.Client interface. Like the real client it turns
// 4xx and 5xx answers into an *httpclient.Error.
func (m *MockHTTPClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	path := req.URL
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}

	resp, found := MockResponse{}, false
	for route, r := range m.routes {
		if strings.HasSuffix(path, route) {
			resp, found = r, true
			break
		}
	}
	if !found {
		return nil, httpclient.NewError(http.StatusNotFound, []byte("Not Found"))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, httpclient.NewError(resp.StatusCode, resp.Body)
	}

	return &httpclient.Response{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Headers:    resp.Headers,
	}, nil
}

// Requests returns the number of requests sent so far
func (m *MockHTTPClient) Requests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// Clear removes all registered responses and recorded requests
func (m *MockHTTPClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string]MockResponse)
	m.requests = nil
}
