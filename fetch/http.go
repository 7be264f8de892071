package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/stepladder-dev/stepladder/internal/logger"
	"github.com/stepladder-dev/stepladder/internal/version"
)

// DefaultTimeout bounds a single HTTP fetch, including the body read.
// Generous because package archives can be large.
const DefaultTimeout = 60 * time.Second

// HTTPFetcher retrieves artifacts over http and https.
type HTTPFetcher struct {
	// client performs the requests. Replaced wholesale by WithClient.
	client *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPOption configures HTTPFetcher behaviour.
type HTTPOption func(*HTTPFetcher)

// WithTimeout bounds every fetch issued by the fetcher.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// WithIPv4Only forces connections over IPv4, resolving A records only.
// Useful on hosts whose IPv6 routing is broken while the release server
// publishes AAAA records.
func WithIPv4Only() HTTPOption {
	return func(f *HTTPFetcher) {
		dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DialContext = func(ctx context.Context, _, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp4", addr)
		}

		f.client.Transport = transport
	}
}

// WithClient replaces the underlying HTTP client, dropping the effect of any
// previously applied option.
func WithClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// NewHTTPFetcher returns an HTTP fetching strategy with DefaultTimeout applied.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch downloads the complete body addressed by rawURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	response, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrDownload, rawURL, err)
	}

	return data, nil
}

// FetchToFile streams the body addressed by rawURL into destPath,
// skipping the download when destPath already exists.
func (f *HTTPFetcher) FetchToFile(ctx context.Context, rawURL, destPath string) error {
	if destExists(ctx, destPath) {
		return nil
	}

	response, err := f.get(ctx, rawURL)
	if err != nil {
		return err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if err = writeStream(destPath, response.Body); err != nil {
		return fmt.Errorf("%w: store %s: %w", ErrDownload, destPath, err)
	}

	logger.InfoKV(ctx, "Downloaded artifact", "url", rawURL, "path", destPath)

	return nil
}

// get validates rawURL, issues the request, and enforces a 200 status.
func (f *HTTPFetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := validateHTTPURL(rawURL); err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedURL, rawURL, err)
	}

	request.Header.Set("User-Agent", version.UserAgent())

	response, err := f.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDownload, rawURL, err)
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%w: %s, %s", ErrDownload, rawURL, response.Status)
	}

	return response, nil
}

// validateHTTPURL rejects URLs that cannot address an HTTP resource
// before any network traffic happens.
func validateHTTPURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedURL, rawURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) url", ErrMalformedURL, rawURL)
	}

	return nil
}
