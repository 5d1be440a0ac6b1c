// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"fmt"
	"maps"
	"net/textproto"
	"slices"
	"strings"
	"sync"
	"time"

	urlutil "github.com/law-makers/sitescrape/internal/utils/url"
	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/rs/zerolog/log"
)

// Cache stores finished scrape results.
//
// Only error-free results should be stored; a cached result is served
// without touching the network or a browser.
type Cache interface {
	// Get returns the cached result for key and whether it was found.
	Get(key string) (*models.ScrapeResult, bool)

	// Set stores result for ttl, replacing any existing entry.
	Set(key string, result *models.ScrapeResult, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(key string) error

	// Clear removes every entry.
	Clear() error

	// Close stops background work.
	Close()
}

type entry struct {
	key       string
	result    *models.ScrapeResult
	expiresAt time.Time
	size      int64
}

// MemoryCache is an in-memory LRU cache bounded by an estimated byte size
type MemoryCache struct {
	mu      sync.Mutex
	store   map[string]*list.Element
	lru     *list.List
	maxSize int64
	size    int64
	hits    uint64
	misses  uint64
	now     func() time.Time
	cancel  context.CancelFunc
}

// NewMemoryCache creates a cache holding at most maxSizeBytes of results
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 100 * 1024 * 1024
	}
	ctx, cancel := context.WithCancel(context.Background())

	mc := &MemoryCache{
		store:   make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSizeBytes,
		now:     time.Now,
		cancel:  cancel,
	}
	go mc.janitor(ctx, time.Minute)
	return mc
}

// Get returns a cached result and marks it most recently used
func (mc *MemoryCache) Get(key string) (*models.ScrapeResult, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	el, ok := mc.store[key]
	if !ok {
		mc.misses++
		return nil, false
	}
	e := el.Value.(*entry)
	if mc.now().After(e.expiresAt) {
		mc.misses++
		mc.remove(el)
		return nil, false
	}

	mc.lru.MoveToFront(el)
	mc.hits++
	log.Debug().Str("key", key).Msg("Cache hit")
	return e.result, true
}

// Set stores result, evicting least recently used entries to make room
func (mc *MemoryCache) Set(key string, result *models.ScrapeResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	size := estimateSize(result)

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if el, ok := mc.store[key]; ok {
		mc.remove(el)
	}
	for mc.size+size > mc.maxSize && mc.lru.Len() > 0 {
		victim := mc.lru.Back()
		log.Debug().Str("key", victim.Value.(*entry).key).Msg("Evicted from cache (LRU)")
		mc.remove(victim)
	}

	mc.store[key] = mc.lru.PushFront(&entry{
		key:       key,
		result:    result,
		expiresAt: mc.now().Add(ttl),
		size:      size,
	})
	mc.size += size

	log.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Int64("size_bytes", size).
		Msg("Cached result")
	return nil
}

// Delete removes key
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if el, ok := mc.store[key]; ok {
		mc.remove(el)
	}
	return nil
}

// Clear removes all entries and resets the counters
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.store = make(map[string]*list.Element)
	mc.lru.Init()
	mc.size = 0
	mc.hits = 0
	mc.misses = 0
	return nil
}

// Close stops the expiry janitor
func (mc *MemoryCache) Close() {
	mc.cancel()
}

// remove deletes el; the lock must be held
func (mc *MemoryCache) remove(el *list.Element) {
	e := el.Value.(*entry)
	mc.lru.Remove(el)
	delete(mc.store, e.key)
	mc.size -= e.size
}

func (mc *MemoryCache) janitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.purgeExpired()
		case <-ctx.Done():
			return
		}
	}
}

func (mc *MemoryCache) purgeExpired() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	var next *list.Element
	for el := mc.lru.Front(); el != nil; el = next {
		next = el.Next()
		if now.After(el.Value.(*entry).expiresAt) {
			mc.remove(el)
		}
	}
}

// Stats is a snapshot of cache usage
type Stats struct {
	Entries   int
	SizeBytes int64
	MaxBytes  int64
	Hits      uint64
	Misses    uint64
}

// HitRate returns hits as a percentage of lookups
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Stats returns current usage
func (mc *MemoryCache) Stats() Stats {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return Stats{
		Entries:   mc.lru.Len(),
		SizeBytes: mc.size,
		MaxBytes:  mc.maxSize,
		Hits:      mc.hits,
		Misses:    mc.misses,
	}
}

// Key builds the cache key of a request. Forced modes and custom headers
// are cached apart from the plain adaptive result; header names are matched
// case-insensitively.
func Key(url string, mode models.ScraperMode, headers map[string]string) string {
	key, err := urlutil.Normalize(url)
	if err != nil {
		key = url
	}
	if mode != "" && mode != models.ModeAuto {
		key += "::" + string(mode)
	}
	if len(headers) == 0 {
		return key
	}

	canonical := make(map[string]string, len(headers))
	for name, value := range headers {
		canonical[textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(name))] = value
	}
	var b strings.Builder
	b.WriteString(key)
	for _, name := range slices.Sorted(maps.Keys(canonical)) {
		fmt.Fprintf(&b, "::%s=%s", name, canonical[name])
	}
	return b.String()
}

// estimateSize approximates the memory held by a result
func estimateSize(r *models.ScrapeResult) int64 {
	size := int64(1024)
	size += int64(len(r.URL) + len(r.Meta.Title) + len(r.Meta.Description))
	for _, s := range r.Sections {
		size += int64(len(s.RawHTML) + len(s.Content.Text) + len(s.Label) + len(s.ID))
		for _, l := range s.Content.Links {
			size += int64(len(l.Href) + len(l.Text))
		}
		for _, img := range s.Content.Images {
			size += int64(len(img.Src) + len(img.Alt))
		}
		size += 256
	}
	for _, c := range r.Interactions.Clicks {
		size += int64(len(c))
	}
	for _, p := range r.Interactions.Pages {
		size += int64(len(p))
	}
	return size
}
