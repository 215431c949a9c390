package tracker

import (
	"sync"
	"testing"
)

func TestTrackerCounts(t *testing.T) {
	tr := New()

	tr.TrackCacheHit("open-meteo")
	tr.TrackCacheHit("open-meteo")
	tr.TrackCacheMiss("open-meteo")
	tr.TrackAPISuccess("open-meteo")
	tr.TrackAPIFailure("naturalearth")
	tr.TrackRoute(false)
	tr.TrackRoute(true)

	snap := tr.Snapshot()

	om := snap.Providers["open-meteo"]
	if om.CacheHits != 2 || om.CacheMisses != 1 || om.APISuccess != 1 {
		t.Errorf("open-meteo stats wrong: %+v", om)
	}
	if snap.Providers["naturalearth"].APIFailures != 1 {
		t.Errorf("naturalearth failures wrong: %+v", snap.Providers["naturalearth"])
	}
	if snap.RoutesComputed != 2 || snap.RoutesFallback != 1 {
		t.Errorf("route counters wrong: %+v", snap)
	}
}

func TestTrackerConcurrent(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackCacheHit("p")
			tr.TrackAPISuccess("p")
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	if snap.Providers["p"].CacheHits != 50 || snap.Providers["p"].APISuccess != 50 {
		t.Errorf("concurrent counts wrong: %+v", snap.Providers["p"])
	}
}
