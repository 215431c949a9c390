// Package router implements the geodesic A* route search: a priority-queue
// driven expansion over a dynamically generated bearing fan, avoiding land
// polygons and weighting candidate legs by forecast sea-state risk.
package router

import (
	"container/heap"
	"context"
	"log/slog"
	"math"
	"time"

	"searoute/pkg/geo"
	"searoute/pkg/landmask"
	"searoute/pkg/tracker"
	"searoute/pkg/weather"
)

// minSegmentNm rejects degenerate expansion legs.
const minSegmentNm = 0.1

// MaskProvider yields the shared land mask, loading it on first use.
type MaskProvider interface {
	EnsureReady(ctx context.Context) *landmask.Mask
}

// ForecastClient fetches the per-request weather series.
type ForecastClient interface {
	Fetch(ctx context.Context, origin, dest geo.Point) (*weather.Series, error)
}

// Options holds the search tunables.
type Options struct {
	// KeyPrecision is the finest decimal precision of the visited-table
	// key. The search coarsens it to match the step distance on long
	// trips. Zero forces whole-degree cells everywhere; negative selects
	// the default.
	KeyPrecision int
	// ReachThresholdNm is the minimum success radius around the
	// destination; the search widens it to the step distance.
	ReachThresholdNm float64
	CruiseSpeedKn    float64
	FuelBurnMtPerH   float64
	// MaxExpansions bounds the search; exceeding it falls back to a direct
	// path like frontier exhaustion does.
	MaxExpansions int
}

// DefaultOptions returns the standard tunables.
func DefaultOptions() Options {
	return Options{
		KeyPrecision:     2,
		ReachThresholdNm: 3,
		CruiseSpeedKn:    20,
		FuelBurnMtPerH:   1.5,
		MaxExpansions:    200000,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	// Zero is a valid precision (whole-degree cells), only negative is unset
	if o.KeyPrecision < 0 {
		o.KeyPrecision = d.KeyPrecision
	}
	if o.ReachThresholdNm <= 0 {
		o.ReachThresholdNm = d.ReachThresholdNm
	}
	if o.CruiseSpeedKn <= 0 {
		o.CruiseSpeedKn = d.CruiseSpeedKn
	}
	if o.FuelBurnMtPerH <= 0 {
		o.FuelBurnMtPerH = d.FuelBurnMtPerH
	}
	if o.MaxExpansions <= 0 {
		o.MaxExpansions = d.MaxExpansions
	}
	return o
}

// Router computes sea routes. Safe for concurrent use: the land mask is
// shared read-only after its one-time load, everything else is per-request.
type Router struct {
	masks   MaskProvider
	wx      ForecastClient
	tracker *tracker.Tracker
	opts    Options
}

// New creates a Router. wx may be nil to route without weather cost.
func New(masks MaskProvider, wx ForecastClient, tr *tracker.Tracker, opts Options) *Router {
	if tr == nil {
		tr = tracker.New()
	}
	return &Router{masks: masks, wx: wx, tracker: tr, opts: opts.withDefaults()}
}

// Route computes a route between origin and destination under the given
// optimization mode. It always returns a result: external-data failures
// degrade to permissive/zero-risk defaults and an exhausted search falls
// back to the direct two-point path.
func (r *Router) Route(ctx context.Context, origin, dest geo.Point, mode Mode) *Result {
	started := time.Now()

	origin.Lon = geo.NormalizeLon(origin.Lon)
	dest.Lon = geo.NormalizeLon(dest.Lon)

	mask := r.masks.EnsureReady(ctx)

	var series *weather.Series
	if r.wx != nil {
		s, err := r.wx.Fetch(ctx, origin, dest)
		if err != nil {
			// Soft failure: route on zero risk everywhere
			slog.Warn("Weather unavailable, routing with zero risk", "error", err)
		} else {
			series = s
		}
	}

	sampler := func(_ geo.Point, elapsedHours float64) float64 {
		return weather.SampleRisk(series, elapsedHours)
	}

	points, ok := r.search(origin, dest, mode, mask, sampler)
	if !ok {
		// Exhaustion: direct two-point fallback, never an error
		points = []geo.Point{origin, dest}
	}

	res := r.buildResult(points, mask.Loaded(), series != nil, !ok)
	r.tracker.TrackRoute(res.Fallback)

	slog.Info("Route computed",
		"mode", mode.String(),
		"distance_nm", math.Round(res.DistanceNm),
		"points", len(res.Points),
		"fallback", res.Fallback,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return res
}

// riskFn scores the sea state for arriving at a point after the given
// elapsed hours. The production sampler indexes the trip's forecast series
// by time only.
type riskFn func(p geo.Point, elapsedHours float64) float64

// search runs A* and returns the point chain origin..destination, or ok=false
// when the frontier exhausts (or the expansion cap trips) first.
func (r *Router) search(origin, dest geo.Point, mode Mode, mask *landmask.Mask, risk riskFn) ([]geo.Point, bool) {
	distW, wxW := mode.Weights()

	total := geo.Distance(origin, dest)
	if total <= r.opts.ReachThresholdNm {
		// Degenerate trip: origin and destination verbatim
		return []geo.Point{origin, dest}, true
	}

	step := stepDistanceNm(total)
	prec := quantPrecision(step, r.opts.KeyPrecision)

	// The step quantizes approach granularity too: at 95 nm jumps a 3 nm
	// disc around the destination is unhittable, so the success radius
	// grows with the step. The destination is appended verbatim during
	// reconstruction, so a wide radius costs no precision in the output.
	reach := r.opts.ReachThresholdNm
	if step > reach {
		reach = step
	}

	visited := map[string]visitedEntry{}
	originKey := quantKey(origin, prec)
	visited[originKey] = visitedEntry{g: 0, prevKey: "", elapsedHours: 0, point: origin}

	frontier := &nodeHeap{}
	h0 := distW * total
	heap.Push(frontier, &searchNode{
		point: origin, key: originKey,
		g: 0, h: h0, f: h0,
	})

	expansions := 0
	for frontier.Len() > 0 {
		n := heap.Pop(frontier).(*searchNode)

		// A cheaper path may have superseded this location after the node
		// was queued; expanding the stale copy would corrupt the ledger.
		if stale(n, visited) {
			continue
		}

		if geo.Distance(n.point, dest) <= reach {
			return r.reconstruct(visited, n.key, origin, dest), true
		}

		expansions++
		if expansions > r.opts.MaxExpansions {
			slog.Warn("Route search hit expansion cap", "cap", r.opts.MaxExpansions)
			return nil, false
		}

		for _, cand := range neighbors(n.point, step) {
			if mask.IsLand(cand) {
				continue
			}

			segDist := geo.Distance(n.point, cand)
			if segDist < minSegmentNm {
				continue
			}

			elapsed := n.elapsedHours + segDist/r.opts.CruiseSpeedKn

			g := n.g + distW*segDist + wxW*risk(cand, elapsed)

			key := quantKey(cand, prec)
			if prev, ok := visited[key]; ok && prev.g <= g {
				continue
			}
			visited[key] = visitedEntry{g: g, prevKey: n.key, elapsedHours: elapsed, point: cand}

			h := distW * geo.Distance(cand, dest)
			heap.Push(frontier, &searchNode{
				point: cand, key: key,
				g: g, h: h, f: g + h,
				prevKey:      n.key,
				elapsedHours: elapsed,
			})
		}
	}

	return nil, false
}

// stale reports whether a popped node has been superseded by a cheaper path
// to the same quantized location since it was queued. The heap has no
// decrease-key; superseded copies simply linger until popped.
func stale(n *searchNode, visited map[string]visitedEntry) bool {
	best, ok := visited[n.key]
	return ok && n.g > best.g+1e-9
}

// reconstruct walks predecessor keys back to the origin and returns the chain
// in travel order, destination appended.
func (r *Router) reconstruct(visited map[string]visitedEntry, lastKey string, origin, dest geo.Point) []geo.Point {
	var rev []geo.Point
	key := lastKey
	for key != "" {
		entry, ok := visited[key]
		if !ok {
			break
		}
		rev = append(rev, entry.point)
		key = entry.prevKey
	}

	points := make([]geo.Point, 0, len(rev)+1)
	for i := len(rev) - 1; i >= 0; i-- {
		points = append(points, rev[i])
	}
	if len(points) == 0 || points[0] != origin {
		points = append([]geo.Point{origin}, points...)
	}
	if points[len(points)-1] != dest {
		points = append(points, dest)
	}
	return points
}
