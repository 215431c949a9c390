package router

import (
	"searoute/pkg/geo"
)

const (
	// numBearings is the angular fan width: candidates every 22.5 degrees.
	numBearings = 16

	baseResolution = 15.0
	maxSteps       = 60.0
)

// stepDistanceNm sizes the expansion step from the total trip distance:
// coarse for long ocean crossings, fine for short coastal hops, so breadth
// and termination stay balanced.
func stepDistanceNm(totalTripNm float64) float64 {
	steps := totalTripNm / 50 * baseResolution
	if steps < baseResolution {
		steps = baseResolution
	}
	if steps > maxSteps {
		steps = maxSteps
	}

	step := totalTripNm / steps
	if step < 1 {
		step = 1
	}
	return step
}

// neighbors generates the candidate fan around p at the given step distance:
// 16 points at bearings 0, 22.5, ... 337.5. Bearing order is fixed so the
// search is deterministic.
func neighbors(p geo.Point, stepNm float64) []geo.Point {
	out := make([]geo.Point, 0, numBearings)
	for i := 0; i < numBearings; i++ {
		bearing := float64(i) * (360.0 / numBearings)
		out = append(out, geo.DestinationPoint(p, bearing, stepNm))
	}
	return out
}
