// Package forecaster provides caching for forecast responses.
package forecaster

import (
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// CacheKey uniquely identifies a forecast request: model, history fingerprint
// and horizon. Identical histories yield identical fingerprints so repeated
// window evaluations hit the cache.
type CacheKey struct {
	Model       string
	Fingerprint uint64
	Horizon     int
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%x:%d", k.Model, k.Fingerprint, k.Horizon)
}

// NewCacheKey builds a cache key for a forecast request.
func NewCacheKey(model string, history []float64, horizon int) CacheKey {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range history {
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		_, _ = h.Write(buf[:])
	}
	return CacheKey{Model: model, Fingerprint: h.Sum64(), Horizon: horizon}
}

// ForecastCache provides in-memory caching for forecast responses
type ForecastCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewForecastCache creates a new forecast cache
func NewForecastCache(ttl time.Duration, maxSize int) *ForecastCache {
	return &ForecastCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached forecast
func (fc *ForecastCache) Get(key CacheKey) []float64 {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if result, found := fc.cache.Get(key.String()); found {
		fc.hitCount++
		if forecast, ok := result.([]float64); ok {
			return forecast
		}
	}

	fc.missCount++
	return nil
}

// Set stores a forecast in cache
func (fc *ForecastCache) Set(key CacheKey, forecast []float64) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Check size limit
	if fc.cache.ItemCount() >= fc.maxSize {
		// Remove expired items first
		fc.cache.DeleteExpired()
	}

	fc.cache.Set(key.String(), forecast, fc.ttl)
}

// Clear flushes the entire cache
func (fc *ForecastCache) Clear() {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.cache.Flush()
	fc.hitCount = 0
	fc.missCount = 0
}

// Stats returns cache statistics
func (fc *ForecastCache) Stats() (hits, misses uint64, ratio float64) {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	hits = fc.hitCount
	misses = fc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (fc *ForecastCache) ItemCount() int {
	return fc.cache.ItemCount()
}
