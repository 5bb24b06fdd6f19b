// Package fetcher is the HTTP transport used by the remote link checker.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDrain bounds how much of a response body is read before closing so the
// connection can be reused.
const maxDrain = 64 << 10

// Transport issues one request and reports the status code. Statuses outside
// 2xx are returned as *StatusError.
type Transport interface {
	Request(ctx context.Context, url, method string, headers map[string]string, timeout time.Duration) (int, error)
}

// StatusError is a completed request with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP Error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{},
	}
}

// NewFetcherWithClient wraps an existing client, e.g. one from httptest.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

func (f *Fetcher) Request(ctx context.Context, url, method string, headers map[string]string, timeout time.Duration) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp.StatusCode, nil
}
