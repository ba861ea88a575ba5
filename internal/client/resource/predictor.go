package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Predictor guesses which resources a route is likely to need next
type Predictor interface {
	Predict(route string) []string
}

// StaticPredictor looks predictions up in a fixed route table
type StaticPredictor map[string][]string

// DefaultRoutes is the route table used when none is configured
var DefaultRoutes = StaticPredictor{
	"/home":      {"/profile", "/settings", "user-avatar.png"},
	"/dashboard": {"/reports", "/analytics", "chart-library.js"},
	"/profile":   {"/edit-profile", "user-data.json"},
}

// Predict returns the table entry for route
func (p StaticPredictor) Predict(route string) []string {
	return p[route]
}

// Fetcher downloads a resource
type Fetcher interface {
	Fetch(ctx context.Context, resource string) ([]byte, error)
}

// HTTPFetcher resolves resources against a base URL and GETs them
type HTTPFetcher struct {
	client  *http.Client
	baseURL *url.URL
	maxSize int64
}

// NewHTTPFetcher creates a fetcher. maxSize limits a single body, 0 means 10MB.
func NewHTTPFetcher(baseURL string, timeout time.Duration, maxSize int64) (*HTTPFetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: u,
		maxSize: maxSize,
	}, nil
}

// Fetch downloads resource relative to the base URL
func (f *HTTPFetcher) Fetch(ctx context.Context, resource string) ([]byte, error) {
	ref, err := url.Parse(resource)
	if err != nil {
		return nil, fmt.Errorf("invalid resource %q: %w", resource, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, resource)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > f.maxSize {
		return nil, fmt.Errorf("resource %s exceeds %d bytes", resource, f.maxSize)
	}
	return body, nil
}
