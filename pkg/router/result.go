package router

import (
	"github.com/paulmach/orb"

	"searoute/pkg/geo"
)

// Result is a computed route with its summary metrics. Points run from
// origin to destination inclusive; Line echoes them as a geographic
// LineString in (lon, lat) order for downstream rendering.
type Result struct {
	Points     []geo.Point
	Line       orb.LineString
	DistanceNm float64
	TimeHours  float64
	FuelMt     float64

	// Fallback is set when the search exhausted its frontier and the
	// direct two-point path was substituted.
	Fallback bool

	LandMaskLoaded bool
	WeatherSampled bool
}

// buildResult sums segment distances over the point chain and derives time
// and fuel from the fixed cruising speed and burn rate.
func (r *Router) buildResult(points []geo.Point, maskLoaded, weatherSampled, fallback bool) *Result {
	var distance float64
	for i := 1; i < len(points); i++ {
		distance += geo.Distance(points[i-1], points[i])
	}

	timeHours := distance / r.opts.CruiseSpeedKn
	fuel := timeHours * r.opts.FuelBurnMtPerH

	line := make(orb.LineString, 0, len(points))
	for _, p := range points {
		line = append(line, orb.Point{p.Lon, p.Lat})
	}

	return &Result{
		Points:         points,
		Line:           line,
		DistanceNm:     distance,
		TimeHours:      timeHours,
		FuelMt:         fuel,
		Fallback:       fallback,
		LandMaskLoaded: maskLoaded,
		WeatherSampled: weatherSampled,
	}
}
