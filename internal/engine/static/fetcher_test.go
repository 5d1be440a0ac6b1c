package static

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/law-makers/sitescrape/internal/proxy"
	"github.com/law-makers/sitescrape/internal/retry"
	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head><title>Hello</title></head><body><main><p>Hello World</p></main></body></html>`

func fetch(t *testing.T, f *Fetcher, url string) (string, error) {
	t.Helper()
	return f.Fetch(context.Background(), models.RequestOptions{URL: url})
}

func TestFetch_SendsBrowserHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(page))
	}))
	defer server.Close()

	body, err := New(nil).Fetch(context.Background(), models.RequestOptions{
		URL:     server.URL,
		Headers: map[string]string{"X-Trace": "abc"},
	})

	require.NoError(t, err)
	assert.Equal(t, page, body)
	assert.Equal(t, DesktopUserAgent, got.Get("User-Agent"))
	assert.Equal(t, "gzip, deflate, br", got.Get("Accept-Encoding"))
	assert.Equal(t, "abc", got.Get("X-Trace"))
}

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	body, err := fetch(t, New(nil), server.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, page, body)
}

func TestFetch_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, models.ErrBlocked},
		{http.StatusForbidden, models.ErrBlocked},
		{http.StatusTooManyRequests, models.ErrBlocked},
		{http.StatusNotFound, models.ErrFetchFailed},
		{http.StatusInternalServerError, models.ErrFetchFailed},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := fetch(t, New(nil), server.URL)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var se *models.ScrapeError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.Details["status"])
		})
	}
}

func TestFetch_BlockedMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := fetch(t, New(nil), server.URL)
	assert.Equal(t, models.MsgAccessDenied, models.MessageOf(err))
}

func TestFetch_RetriesGatewayErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(page))
	}))
	defer server.Close()

	cfg := retry.StaticFetchConfig(2)
	cfg.InitialBackoff = 10 * time.Millisecond

	body, err := fetch(t, New(nil, WithRetry(cfg)), server.URL)
	require.NoError(t, err)
	assert.Equal(t, page, body)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_DoesNotRetryBlocked(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := fetch(t, New(nil, WithRetry(retry.StaticFetchConfig(3))), server.URL)
	assert.ErrorIs(t, err, models.ErrBlocked)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_ConnectTimeout(t *testing.T) {
	client := NewClient()
	client.Transport.(*http.Transport).DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := fetch(t, New(client, WithTimeout(50*time.Millisecond)), "http://example.invalid/")
	assert.ErrorIs(t, err, models.ErrTimeout)
	assert.Equal(t, models.MsgConnectTimeout, models.MessageOf(err))
}

func TestFetch_StalledAfterConnectIsFetchFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"no response", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}},
		{"partial body", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("<html><body>"))
			w.(http.Flusher).Flush()
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := fetch(t, New(nil, WithTimeout(50*time.Millisecond)), server.URL)
			assert.ErrorIs(t, err, models.ErrFetchFailed)
			assert.NotErrorIs(t, err, models.ErrTimeout)
			assert.True(t, strings.HasPrefix(models.MessageOf(err), "Failed to fetch page: "), models.MessageOf(err))
		})
	}
}

func TestFetch_DecodesContentEncoding(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write([]byte(page))
	gw.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	bw.Write([]byte(page))
	bw.Close()

	tests := []struct {
		encoding string
		payload  []byte
	}{
		{"gzip", gz.Bytes()},
		{"br", br.Bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Content-Encoding", tt.encoding)
				w.Write(tt.payload)
			}))
			defer server.Close()

			body, err := fetch(t, New(nil), server.URL)
			require.NoError(t, err)
			assert.Equal(t, page, body)
		})
	}
}

func TestFetch_ConvertsCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<p>caf\xe9</p>"))
	}))
	defer server.Close()

	body, err := fetch(t, New(nil), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<p>café</p>", body)
}

func TestFetch_RoutesThroughContextProxy(t *testing.T) {
	var target string
	proxySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target = r.URL.String()
		w.Write([]byte(page))
	}))
	defer proxySrv.Close()

	ctx := proxy.WithProxy(context.Background(), proxySrv.URL)
	body, err := New(nil).Fetch(ctx, models.RequestOptions{URL: "http://site.invalid/pricing"})

	require.NoError(t, err)
	assert.Equal(t, page, body)
	assert.Equal(t, "http://site.invalid/pricing", target)
}

func TestFetch_InvalidURL(t *testing.T) {
	_, err := fetch(t, New(nil), "http://[::1")
	assert.ErrorIs(t, err, models.ErrFetchFailed)
}
