package forecaster

import (
	"testing"
	"time"
)

func TestForecastCacheSetGet(t *testing.T) {
	fc := NewForecastCache(time.Minute, 100)

	history := []float64{100, 101, 102}
	key := NewCacheKey("arima", history, 5)

	if cached := fc.Get(key); cached != nil {
		t.Fatal("expected cache miss for fresh cache")
	}

	forecast := []float64{103, 104, 105, 106, 107}
	fc.Set(key, forecast)

	cached := fc.Get(key)
	if cached == nil {
		t.Fatal("expected cache hit after set")
	}
	if len(cached) != 5 || cached[0] != 103 {
		t.Errorf("unexpected cached forecast: %v", cached)
	}
}

func TestCacheKeyFingerprint(t *testing.T) {
	a := NewCacheKey("arima", []float64{1, 2, 3}, 5)
	b := NewCacheKey("arima", []float64{1, 2, 3}, 5)
	c := NewCacheKey("arima", []float64{1, 2, 4}, 5)
	d := NewCacheKey("prophet", []float64{1, 2, 3}, 5)

	if a.String() != b.String() {
		t.Error("identical requests should produce identical keys")
	}
	if a.String() == c.String() {
		t.Error("different histories should produce different keys")
	}
	if a.String() == d.String() {
		t.Error("different models should produce different keys")
	}
}

func TestForecastCacheStats(t *testing.T) {
	fc := NewForecastCache(time.Minute, 100)

	key := NewCacheKey("arima", []float64{1, 2, 3}, 5)
	fc.Get(key) // miss
	fc.Set(key, []float64{4, 5, 6, 7, 8})
	fc.Get(key) // hit

	hits, misses, ratio := fc.Stats()
	if hits != 1 {
		t.Errorf("expected 1 hit, got %d", hits)
	}
	if misses != 1 {
		t.Errorf("expected 1 miss, got %d", misses)
	}
	if ratio != 0.5 {
		t.Errorf("expected ratio 0.5, got %v", ratio)
	}
}

func TestForecastCacheClear(t *testing.T) {
	fc := NewForecastCache(time.Minute, 100)

	key := NewCacheKey("arima", []float64{1, 2, 3}, 5)
	fc.Set(key, []float64{4, 5, 6, 7, 8})
	fc.Clear()

	if fc.ItemCount() != 0 {
		t.Errorf("expected empty cache after clear, got %d items", fc.ItemCount())
	}
}
