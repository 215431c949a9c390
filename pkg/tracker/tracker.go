package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks usage statistics per external data provider, plus
// route-computation outcomes.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ProviderStats

	RoutesComputed int64
	RoutesFallback int64
}

// ProviderStats holds metrics for a specific provider.
// Fields are accessed atomically.
type ProviderStats struct {
	CacheHits   int64
	CacheMisses int64
	APISuccess  int64
	APIFailures int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*ProviderStats),
	}
}

// getStats returns the stats object for a provider, creating it if needed.
func (t *Tracker) getStats(provider string) *ProviderStats {
	t.mu.RLock()
	s, ok := t.stats[provider]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[provider]; ok {
		return s
	}
	s = &ProviderStats{}
	t.stats[provider] = s
	return s
}

// TrackCacheHit increments the cache hit counter.
func (t *Tracker) TrackCacheHit(provider string) {
	atomic.AddInt64(&t.getStats(provider).CacheHits, 1)
}

func (t *Tracker) TrackCacheMiss(provider string) {
	atomic.AddInt64(&t.getStats(provider).CacheMisses, 1)
}

func (t *Tracker) TrackAPISuccess(provider string) {
	atomic.AddInt64(&t.getStats(provider).APISuccess, 1)
}

func (t *Tracker) TrackAPIFailure(provider string) {
	atomic.AddInt64(&t.getStats(provider).APIFailures, 1)
}

// TrackRoute records a completed route computation; fallback indicates the
// search exhausted its frontier and returned a direct path.
func (t *Tracker) TrackRoute(fallback bool) {
	atomic.AddInt64(&t.RoutesComputed, 1)
	if fallback {
		atomic.AddInt64(&t.RoutesFallback, 1)
	}
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Providers      map[string]ProviderStats `json:"providers"`
	RoutesComputed int64                    `json:"routes_computed"`
	RoutesFallback int64                    `json:"routes_fallback"`
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]ProviderStats)
	for k, v := range t.stats {
		result[k] = ProviderStats{
			CacheHits:   atomic.LoadInt64(&v.CacheHits),
			CacheMisses: atomic.LoadInt64(&v.CacheMisses),
			APISuccess:  atomic.LoadInt64(&v.APISuccess),
			APIFailures: atomic.LoadInt64(&v.APIFailures),
		}
	}
	return Snapshot{
		Providers:      result,
		RoutesComputed: atomic.LoadInt64(&t.RoutesComputed),
		RoutesFallback: atomic.LoadInt64(&t.RoutesFallback),
	}
}
