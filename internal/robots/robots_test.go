package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func robotsServer(t *testing.T, body string, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheck_Disabled(t *testing.T) {
	a := NewAgent(Options{Respect: false}, nil)
	assert.NoError(t, a.Check(context.Background(), "https://example.com/private"))

	var nilAgent *Agent
	assert.NoError(t, nilAgent.Check(context.Background(), "https://example.com/private"))
}

func TestCheck_Rules(t *testing.T) {
	var hits int32
	server := robotsServer(t, "User-agent: *\nDisallow: /private\n", &hits)
	a := NewAgent(Options{Respect: true, UserAgent: "sitescrape"}, server.Client())

	assert.NoError(t, a.Check(context.Background(), server.URL+"/public"))
	assert.ErrorIs(t, a.Check(context.Background(), server.URL+"/private/page"), ErrDisallowed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "rules are cached per host")
}

func TestCheck_Override(t *testing.T) {
	server := robotsServer(t, "User-agent: *\nDisallow: /\n", nil)
	u, _ := url.Parse(server.URL)

	a := NewAgent(Options{Respect: true, Overrides: []string{u.Hostname()}}, server.Client())
	assert.NoError(t, a.Check(context.Background(), server.URL+"/anything"))
}

func TestCheck_FailsOpen(t *testing.T) {
	a := NewAgent(Options{Respect: true}, nil)
	assert.NoError(t, a.Check(context.Background(), "http://127.0.0.1:1/page"))
	assert.NoError(t, a.Check(context.Background(), "not a url"))
}
