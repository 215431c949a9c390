// Package landmask provides a coastline-polygon land/water test for the
// route search. The polygon set is loaded once per process and shared
// read-only across concurrent searches; if no dataset can be obtained the
// mask degrades to a permissive state that never flags land, so routing
// stays available without authoritative coastline data.
package landmask

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"searoute/pkg/geo"
)

//go:embed land.geojson
var bundledLandGeoJSON []byte

// State describes how the mask was (or was not) populated.
type State int

const (
	// StateLoaded means a polygon dataset is active.
	StateLoaded State = iota
	// StatePermissive means no dataset could be obtained; IsLand always
	// reports water.
	StatePermissive
)

func (s State) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "permissive"
}

// ring is an outer boundary with its precomputed bound for cheap rejection.
type ring struct {
	ring  orb.Ring
	bound orb.Bound
}

// Mask is an immutable land/water test. Safe for concurrent use.
//
// Containment ray-casts against outer rings only. Inner rings (holes such as
// enclosed inland seas) are not distinguished, so water bodies fully inside a
// landmass classify as land when present in the dataset. Acceptable for the
// coarse outer-ring-only datasets this is meant to run with.
type Mask struct {
	rings []ring
	state State
}

// NewFromFeatureCollection builds a Mask from parsed polygon features.
func NewFromFeatureCollection(fc *geojson.FeatureCollection) *Mask {
	m := &Mask{state: StateLoaded}
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			m.addOuterRing(g)
		case orb.MultiPolygon:
			for _, poly := range g {
				m.addOuterRing(poly)
			}
		}
	}
	return m
}

// NewPermissive returns a mask that never flags land.
func NewPermissive() *Mask {
	return &Mask{state: StatePermissive}
}

func (m *Mask) addOuterRing(poly orb.Polygon) {
	if len(poly) == 0 || len(poly[0]) < 3 {
		return
	}
	m.rings = append(m.rings, ring{ring: poly[0], bound: poly[0].Bound()})
}

// IsLand reports whether the point falls inside any polygon's outer ring.
// Permissive masks always report water.
func (m *Mask) IsLand(p geo.Point) bool {
	if m.state != StateLoaded {
		return false
	}
	pt := orb.Point{p.Lon, p.Lat}
	for _, r := range m.rings {
		if !r.bound.Contains(pt) {
			continue
		}
		if planar.RingContains(r.ring, pt) {
			return true
		}
	}
	return false
}

// State returns how the mask was populated.
func (m *Mask) State() State { return m.state }

// Loaded reports whether a polygon dataset is active.
func (m *Mask) Loaded() bool { return m.state == StateLoaded }

// Rings returns the number of outer rings in the dataset.
func (m *Mask) Rings() int { return len(m.rings) }

// Provider performs the one-time load of the mask. The zero load order is
// configured local file, then the bundled dataset, then the remote fallback;
// total failure yields a permissive mask rather than an error.
type Provider struct {
	cfg    Config
	client Fetcher

	once sync.Once
	mask *Mask
}

// Config holds dataset locations.
type Config struct {
	// Path optionally points at a local GeoJSON overriding the bundled data.
	Path string
	// URL is the remote fallback.
	URL string
}

// Fetcher is the subset of the request client used for the remote fallback.
type Fetcher interface {
	Get(ctx context.Context, url, cacheKey string) ([]byte, error)
}

// NewProvider creates a Provider. client may be nil to disable the remote
// fallback.
func NewProvider(cfg Config, client Fetcher) *Provider {
	return &Provider{cfg: cfg, client: client}
}

// EnsureReady loads the mask exactly once and returns it. Concurrent first
// callers block on the same load; later calls return the cached mask.
func (p *Provider) EnsureReady(ctx context.Context) *Mask {
	p.once.Do(func() {
		p.mask = p.load(ctx)
	})
	return p.mask
}

func (p *Provider) load(ctx context.Context) *Mask {
	if p.cfg.Path != "" {
		if m, err := maskFromFile(p.cfg.Path); err == nil {
			slog.Info("Land mask loaded", "source", p.cfg.Path, "rings", m.Rings())
			return m
		} else {
			slog.Warn("Land mask local file unusable", "path", p.cfg.Path, "error", err)
		}
	}

	if m, err := maskFromData(bundledLandGeoJSON); err == nil && m.Rings() > 0 {
		slog.Info("Land mask loaded", "source", "bundled", "rings", m.Rings())
		return m
	}

	if p.client != nil && p.cfg.URL != "" {
		if data, err := p.client.Get(ctx, p.cfg.URL, "landmask:"+p.cfg.URL); err == nil {
			if m, err := maskFromData(data); err == nil {
				slog.Info("Land mask loaded", "source", p.cfg.URL, "rings", m.Rings())
				return m
			} else {
				slog.Warn("Land mask remote data unusable", "url", p.cfg.URL, "error", err)
			}
		} else {
			slog.Warn("Land mask fetch failed", "url", p.cfg.URL, "error", err)
		}
	}

	slog.Warn("Land mask unavailable, routing without land avoidance")
	return NewPermissive()
}

func maskFromFile(path string) (*Mask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read land GeoJSON: %w", err)
	}
	return maskFromData(data)
}

func maskFromData(data []byte) (*Mask, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse land GeoJSON: %w", err)
	}
	return NewFromFeatureCollection(fc), nil
}
