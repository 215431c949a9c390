package landmask

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searoute/pkg/geo"
)

// squareFC returns a FeatureCollection with a single square polygon.
func squareFC(minLon, minLat, maxLon, maxLat float64) *geojson.FeatureCollection {
	poly := orb.Polygon{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(poly))
	return fc
}

func TestIsLandSquare(t *testing.T) {
	m := NewFromFeatureCollection(squareFC(0, 0, 10, 10))
	require.Equal(t, 1, m.Rings())

	assert.True(t, m.IsLand(geo.Point{Lat: 5, Lon: 5}), "center should be land")
	assert.False(t, m.IsLand(geo.Point{Lat: 15, Lon: 5}), "north of square should be water")
	assert.False(t, m.IsLand(geo.Point{Lat: -1, Lon: -1}), "outside corner should be water")
}

func TestIsLandMultiPolygon(t *testing.T) {
	mp := orb.MultiPolygon{
		{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}},
		{{{10, 10}, {12, 10}, {12, 12}, {10, 12}, {10, 10}}},
	}
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(mp))

	m := NewFromFeatureCollection(fc)
	assert.Equal(t, 2, m.Rings())
	assert.True(t, m.IsLand(geo.Point{Lat: 1, Lon: 1}))
	assert.True(t, m.IsLand(geo.Point{Lat: 11, Lon: 11}))
	assert.False(t, m.IsLand(geo.Point{Lat: 5, Lon: 5}))
}

func TestPermissiveNeverFlagsLand(t *testing.T) {
	m := NewPermissive()
	assert.False(t, m.Loaded())
	assert.Equal(t, StatePermissive, m.State())

	for _, p := range []geo.Point{{Lat: 0, Lon: 0}, {Lat: 48.85, Lon: 2.35}, {Lat: -33.9, Lon: 18.4}} {
		assert.False(t, m.IsLand(p))
	}
}

func TestBundledDataset(t *testing.T) {
	m, err := maskFromData(bundledLandGeoJSON)
	require.NoError(t, err)
	require.Greater(t, m.Rings(), 5)

	tests := []struct {
		name string
		p    geo.Point
		land bool
	}{
		{"Sahara", geo.Point{Lat: 23.0, Lon: 10.0}, true},
		{"Central Europe", geo.Point{Lat: 50.0, Lon: 15.0}, true},
		{"Kansas", geo.Point{Lat: 38.5, Lon: -98.0}, true},
		{"Amazon", geo.Point{Lat: -5.0, Lon: -60.0}, true},
		{"Outback", geo.Point{Lat: -25.0, Lon: 134.0}, true},
		{"Mid Atlantic", geo.Point{Lat: 30.0, Lon: -40.0}, false},
		{"Indian Ocean", geo.Point{Lat: -20.0, Lon: 80.0}, false},
		{"North Sea", geo.Point{Lat: 55.5, Lon: 3.0}, false},
		{"Strait of Gibraltar", geo.Point{Lat: 35.95, Lon: -5.6}, false},
		{"Dover Strait", geo.Point{Lat: 51.0, Lon: 1.4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.land, m.IsLand(tt.p))
		})
	}
}

type stubFetcher struct {
	data []byte
	err  error
}

func (s stubFetcher) Get(ctx context.Context, url, cacheKey string) ([]byte, error) {
	return s.data, s.err
}

func TestProviderLoadsOnce(t *testing.T) {
	p := NewProvider(Config{}, nil)

	m1 := p.EnsureReady(context.Background())
	m2 := p.EnsureReady(context.Background())
	assert.Same(t, m1, m2, "EnsureReady must return the cached mask")
	assert.True(t, m1.Loaded(), "bundled dataset should load")
}

func TestProviderConcurrentFirstUse(t *testing.T) {
	p := NewProvider(Config{}, nil)

	results := make(chan *Mask, 8)
	for i := 0; i < 8; i++ {
		go func() {
			results <- p.EnsureReady(context.Background())
		}()
	}

	first := <-results
	for i := 1; i < 8; i++ {
		assert.Same(t, first, <-results)
	}
}

func TestProviderLocalFileOverride(t *testing.T) {
	// Unreadable local path falls back to the bundled data
	p := NewProvider(Config{Path: "/nonexistent/land.geojson"}, nil)
	m := p.EnsureReady(context.Background())
	assert.True(t, m.Loaded())
	assert.Greater(t, m.Rings(), 5)
}

func TestProviderRemoteFallbackError(t *testing.T) {
	// Fetcher errors must not surface; routing degrades instead.
	fetchErr := stubFetcher{err: errors.New("network down")}
	p := NewProvider(Config{URL: "http://example.org/land.geojson"}, fetchErr)

	m := p.EnsureReady(context.Background())
	// Bundled data still wins before the remote is even tried
	assert.True(t, m.Loaded())
}
