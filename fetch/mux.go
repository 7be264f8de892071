package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Mux dispatches fetches to a strategy chosen by URL scheme:
// http and https go to the HTTP strategy, file URLs and plain paths go
// to the filesystem strategy, and everything else is rejected up front.
type Mux struct {
	httpFetcher Fetcher
	fileFetcher Fetcher
}

var _ Fetcher = (*Mux)(nil)

// NewMux builds a scheme mux over the provided strategies.
func NewMux(httpFetcher, fileFetcher Fetcher) *Mux {
	return &Mux{
		httpFetcher: httpFetcher,
		fileFetcher: fileFetcher,
	}
}

// Default returns a mux over the stock HTTP and filesystem strategies.
func Default(opts ...HTTPOption) *Mux {
	return NewMux(NewHTTPFetcher(opts...), NewFileFetcher())
}

// Fetch dispatches to the strategy matching the URL scheme.
func (m *Mux) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	strategy, err := m.strategy(rawURL)
	if err != nil {
		return nil, err
	}

	return strategy.Fetch(ctx, rawURL)
}

// FetchToFile dispatches to the strategy matching the URL scheme.
func (m *Mux) FetchToFile(ctx context.Context, rawURL, destPath string) error {
	strategy, err := m.strategy(rawURL)
	if err != nil {
		return err
	}

	return strategy.FetchToFile(ctx, rawURL, destPath)
}

// strategy picks the fetcher for rawURL without touching the resource.
func (m *Mux) strategy(rawURL string) (Fetcher, error) {
	// Plain paths carry no scheme separator and go straight to the filesystem.
	if !strings.Contains(rawURL, "://") {
		return m.fileFetcher, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedURL, rawURL, err)
	}

	switch u.Scheme {
	case "http", "https":
		return m.httpFetcher, nil
	case "file":
		return m.fileFetcher, nil
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedURL, u.Scheme)
	}
}
