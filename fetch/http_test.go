package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHTTPFetcherFetch verifies a plain download round trip.
func TestHTTPFetcherFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	data, err := NewHTTPFetcher().Fetch(context.Background(), server.URL+"/pkg.zip")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)
}

// TestHTTPFetcherEmptyBody verifies that a zero-length body is a valid result.
func TestHTTPFetcherEmptyBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	data, err := NewHTTPFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Empty(t, data)
}

// TestHTTPFetcherBadStatus verifies that non-200 responses surface as download errors.
func TestHTTPFetcherBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher().Fetch(context.Background(), server.URL+"/missing.zip")
	require.ErrorIs(t, err, ErrDownload)
}

// TestHTTPFetcherMalformedURL verifies that validation fails before any request is sent.
func TestHTTPFetcherMalformedURL(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher()

	for _, rawURL := range []string{"", "not a url", "relative/path.zip", "ftp://host/pkg.zip"} {
		_, err := fetcher.Fetch(context.Background(), rawURL)
		require.ErrorIs(t, err, ErrMalformedURL, rawURL)
	}

	require.Zero(t, requests.Load())
}

// TestHTTPFetcherFetchToFile verifies the download-to-disk path and that an
// existing artifact short-circuits the second call.
func TestHTTPFetcherFetchToFile(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte("archive-bytes"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "1.0.0.zip")
	fetcher := NewHTTPFetcher()

	require.NoError(t, fetcher.FetchToFile(context.Background(), server.URL, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, []byte("archive-bytes"), data)
	require.EqualValues(t, 1, requests.Load())

	// Second call reuses the artifact without touching the network.
	require.NoError(t, fetcher.FetchToFile(context.Background(), server.URL, dest))
	require.EqualValues(t, 1, requests.Load())
}

// TestHTTPFetcherContextCancelled verifies that a cancelled context aborts the fetch.
func TestHTTPFetcherContextCancelled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPFetcher().Fetch(ctx, server.URL)
	require.ErrorIs(t, err, ErrDownload)
}
