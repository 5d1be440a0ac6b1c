package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockScraper struct {
	running int32
	peak    int32
	mu      sync.Mutex
	seen    []string
}

func (m *mockScraper) Scrape(_ context.Context, opts models.RequestOptions) *models.ScrapeResult {
	n := atomic.AddInt32(&m.running, 1)
	for {
		p := atomic.LoadInt32(&m.peak)
		if n <= p || atomic.CompareAndSwapInt32(&m.peak, p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	atomic.AddInt32(&m.running, -1)

	m.mu.Lock()
	m.seen = append(m.seen, opts.URL)
	m.mu.Unlock()
	return models.NewScrapeResult(opts.URL)
}

func TestRunner_Run(t *testing.T) {
	scraper := &mockScraper{}
	runner := New(scraper, 2)

	requests := []models.RequestOptions{
		{URL: "https://a.example/1"},
		{URL: "https://b.example/1"},
		{URL: "ftp://bad.example"},
		{URL: "https://a.example/2"},
	}

	arrived := 0
	items := Collect(runner.Run(context.Background(), requests), len(requests), func(Item) { arrived++ })

	assert.Equal(t, len(requests), arrived)

	for i, item := range items {
		assert.Equal(t, i, item.Index)
	}
	require.Error(t, items[2].Err)
	assert.ErrorIs(t, items[2].Err, models.ErrValidation)
	assert.Nil(t, items[2].Result)
	for _, i := range []int{0, 1, 3} {
		require.NotNil(t, items[i].Result)
		assert.Equal(t, requests[i].URL, items[i].Result.URL)
	}
	assert.Len(t, scraper.seen, 3)
	assert.LessOrEqual(t, atomic.LoadInt32(&scraper.peak), int32(2))
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count := 0
	for range New(&mockScraper{}, 1).Run(ctx, []models.RequestOptions{{URL: "https://a.example"}}) {
		count++
	}
	assert.Zero(t, count)
}

func TestNew_ClampsConcurrency(t *testing.T) {
	assert.Equal(t, MaxConcurrency, New(&mockScraper{}, 500).Concurrency())
	assert.Positive(t, New(&mockScraper{}, 0).Concurrency())
}

func TestInterleave(t *testing.T) {
	requests := []models.RequestOptions{
		{URL: "https://a.example/1"},
		{URL: "https://a.example/2"},
		{URL: "https://a.example/3"},
		{URL: "https://b.example/1"},
		{URL: "not a url"},
	}

	var order []int
	for _, r := range Interleave(requests) {
		order = append(order, r.Index)
	}
	assert.Equal(t, []int{0, 3, 4, 1, 2}, order)
}

func TestGroupByDomain(t *testing.T) {
	groups := GroupByDomain([]models.RequestOptions{
		{URL: "https://A.example/x"},
		{URL: "https://a.example/y"},
		{URL: "::"},
	})
	assert.Len(t, groups["a.example"], 2)
	assert.Len(t, groups["default"], 1)
}
