// Package services defines the data sources behind the dashboard and the
// registry that tracks their health. Each source lives in a sub-package
// (weather, calendar, transit, news, host) and exposes a Load method that
// a flux.RequestAction wraps.
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Service is a named loader. Implementations must be safe for concurrent
// use; a scheduled refresh and a manual refresh can overlap.
type Service[In, Out any] interface {
	// Name returns the source identifier (e.g. "weather").
	Name() string

	// Load fetches one snapshot of the source's data.
	Load(ctx context.Context, in In) (Out, error)
}

// Func adapts a plain function into a Service.
type Func[In, Out any] struct {
	ID string
	Fn func(ctx context.Context, in In) (Out, error)
}

// Name returns the service name.
func (f Func[In, Out]) Name() string { return f.ID }

// Load calls Fn.
func (f Func[In, Out]) Load(ctx context.Context, in In) (Out, error) {
	return f.Fn(ctx, in)
}

// Status tracks the runtime state of a single source. The registry updates
// it after every load.
type Status struct {
	Name        string
	Healthy     bool
	LastRun     time.Time
	LastError   error
	RunCount    int64
	ErrorCount  int64
	LastLatency time.Duration
}

// HTTPError reports a non-2xx response from an upstream API.
type HTTPError struct {
	Source     string
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: GET %s: %d %s", e.Source, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// MaxBodyBytes caps how much of an upstream response is read.
const MaxBodyBytes = 8 << 20

// DefaultHTTPClient is used by services constructed without a client.
var DefaultHTTPClient = &http.Client{Timeout: 15 * time.Second}

// UserAgent identifies the dashboard to upstream APIs.
const UserAgent = "infoboard/0.1 (+https://gitlab.com/tinyland/lab/infoboard)"

// Get performs a GET with ctx and returns the response body bytes. Non-2xx
// responses become *HTTPError.
func Get(ctx context.Context, client *http.Client, source, url string) ([]byte, error) {
	if client == nil {
		client = DefaultHTTPClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", source, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Source: source, URL: url, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", source, err)
	}
	return body, nil
}
