// Package testutil provides test doubles shared by package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport implements http.RoundTripper for testing.
// It's programmable - you can configure responses for specific requests.
type MockTransport struct {
	responses map[string][]response
	errors    map[string]error
	calls     []HTTPCall
	mu        sync.RWMutex
}

type response struct {
	body   []byte
	status int
}

// HTTPCall records a single HTTP call.
type HTTPCall struct {
	Header http.Header
	Method string
	URL    string
	Body   []byte
}

// NewMockTransport creates a new MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[string][]response),
		errors:    make(map[string]error),
	}
}

// Client returns an *http.Client that sends every request through m.
func (m *MockTransport) Client() *http.Client {
	return &http.Client{Transport: m}
}

// RoundTrip records the request and returns the configured response.
// Responses queued for the same request are returned in order; the last one repeats.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		if err := req.Body.Close(); err != nil {
			return nil, fmt.Errorf("failed to close request body: %w", err)
		}
	}
	m.calls = append(m.calls, HTTPCall{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	})

	key := m.makeKey(req.Method, req.URL.String())

	if err, ok := m.errors[key]; ok {
		return nil, err
	}

	if queued := m.responses[key]; len(queued) > 0 {
		r := queued[0]
		if len(queued) > 1 {
			m.responses[key] = queued[1:]
		}
		return &http.Response{
			StatusCode: r.status,
			Status:     fmt.Sprintf("%d %s", r.status, http.StatusText(r.status)),
			Body:       io.NopCloser(bytes.NewReader(r.body)),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}

	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Body:       io.NopCloser(strings.NewReader(`{"message":"Not Found"}`)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// SetResponse queues a JSON response for a specific method and URL.
// Strings and byte slices are sent verbatim.
func (m *MockTransport) SetResponse(method, url string, statusCode int, body any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var bodyBytes []byte
	switch b := body.(type) {
	case nil:
	case string:
		bodyBytes = []byte(b)
	case []byte:
		bodyBytes = b
	default:
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			panic(fmt.Sprintf("failed to marshal response body: %v", err))
		}
	}

	key := m.makeKey(method, url)
	m.responses[key] = append(m.responses[key], response{status: statusCode, body: bodyBytes})
}

// SetError configures an error for a specific method and URL.
func (m *MockTransport) SetError(method, url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errors[m.makeKey(method, url)] = err
}

// Calls returns all recorded HTTP calls.
func (m *MockTransport) Calls() []HTTPCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]HTTPCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

func (*MockTransport) makeKey(method, url string) string {
	return method + ":" + url
}
