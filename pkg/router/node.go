package router

import (
	"fmt"

	"searoute/pkg/geo"
)

// searchNode is a frontier entry. Nodes are immutable once pushed; a cheaper
// path to the same location supersedes the visited-table entry and pushes a
// fresh node, leaving the stale copy to be discarded at pop time.
type searchNode struct {
	point geo.Point
	key   string
	// g is the cumulative cost from the origin, h the heuristic estimate to
	// the destination, f their sum.
	g, h, f float64
	prevKey string
	// elapsedHours is travel time from the origin at cruising speed.
	elapsedHours float64
}

// visitedEntry is the best known way to reach a quantized location. The table
// keyed by quantized coordinates is the authoritative open/closed ledger; it
// grows monotonically during one search and is discarded afterwards.
type visitedEntry struct {
	g            float64
	prevKey      string
	elapsedHours float64
	point        geo.Point
}

// quantKey rounds a point to the given precision. The precision trades
// correctness (too coarse merges distinct nearby states) against convergence
// (too fine never revisits), so it is a tunable, not a constant.
func quantKey(p geo.Point, precision int) string {
	return fmt.Sprintf("%.*f,%.*f", precision, p.Lat, precision, p.Lon)
}

// quantPrecision picks the coarsest decimal precision whose cell size does
// not exceed the step distance, so the visited table merges states at the
// scale the fan actually moves: fine cells under coarse 95 nm ocean steps
// never coalesce and the frontier grows without bound, while cells wider
// than the step would swallow a candidate into its parent's entry. maxPrec
// (the configured key precision) caps how fine the key may get.
func quantPrecision(stepNm float64, maxPrec int) int {
	prec := 0
	// One degree of latitude is 60 nm; each decimal shrinks the cell 10x.
	for cellNm := 60.0; prec < maxPrec && cellNm > stepNm; cellNm /= 10 {
		prec++
	}
	return prec
}
