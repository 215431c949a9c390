package router

import (
	"math"
	"testing"

	"searoute/pkg/geo"
)

func TestStepDistance(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		want  float64
	}{
		// Short hop: steps clamp to 15, but step floor is 1 nm
		{"very short", 10, 1},
		// 50 nm trip: steps = 15, step = 50/15
		{"coastal", 50, 50.0 / 15},
		// 100 nm: steps = 30, step = 100/30
		{"medium", 100, 100.0 / 30},
		// Long crossing: steps clamp at 60
		{"ocean", 6000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stepDistanceNm(tt.total); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("stepDistanceNm(%v) = %v, want %v", tt.total, got, tt.want)
			}
		})
	}
}

func TestNeighborsFan(t *testing.T) {
	p := geo.Point{Lat: 10, Lon: 20}
	fan := neighbors(p, 5)

	if len(fan) != 16 {
		t.Fatalf("expected 16 candidates, got %d", len(fan))
	}

	seen := map[string]bool{}
	for i, c := range fan {
		// All candidates sit at the step distance
		if d := geo.Distance(p, c); math.Abs(d-5) > 0.05 {
			t.Errorf("candidate %d at %v nm, want 5", i, d)
		}
		key := quantKey(c, 4)
		if seen[key] {
			t.Errorf("duplicate candidate %d: %s", i, key)
		}
		seen[key] = true
	}

	// First candidate is due north of p
	if fan[0].Lat <= p.Lat || math.Abs(fan[0].Lon-p.Lon) > 1e-6 {
		t.Errorf("candidate 0 should be due north, got %+v", fan[0])
	}
}

func TestNeighborsDeterministic(t *testing.T) {
	p := geo.Point{Lat: -33.5, Lon: 18.2}
	a := neighbors(p, 12)
	b := neighbors(p, 12)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("candidate %d differs between runs", i)
		}
	}
}
