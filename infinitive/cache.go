package infinitive

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultCacheTTL absorbs the burst of reads HomeKit makes for a single accessory refresh
	DefaultCacheTTL = 250 * time.Millisecond
	cacheSize       = 16
)

// responseCache holds raw response bodies keyed by request.
// InvalidateAll bumps the generation so a request started before the purge can't store a stale body after it.
type responseCache struct {
	lru        *expirable.LRU[string, []byte]
	generation atomic.Uint64
	mu         sync.Mutex // orders put against InvalidateAll
}

// a ttl of zero or less disables caching; the nil cache misses every get and stores nothing
func newResponseCache(ttl time.Duration) *responseCache {
	if ttl <= 0 {
		return nil
	}
	return &responseCache{
		lru: expirable.NewLRU[string, []byte](cacheSize, nil, ttl),
	}
}

func (rc *responseCache) get(key string) ([]byte, bool) {
	if rc == nil {
		return nil, false
	}
	return rc.lru.Get(key)
}

// gen is taken before a request is issued and handed back to put
func (rc *responseCache) gen() uint64 {
	if rc == nil {
		return 0
	}
	return rc.generation.Load()
}

func (rc *responseCache) put(key string, gen uint64, body []byte) bool {
	if rc == nil {
		return true
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if gen != rc.generation.Load() {
		return false
	}
	rc.lru.Add(key, body)
	return true
}

// InvalidateAll drops every cached response
func (rc *responseCache) InvalidateAll() {
	if rc == nil {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.generation.Add(1)
	rc.lru.Purge()
}
