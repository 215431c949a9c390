package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		p1   Point
		p2   Point
		want float64 // nautical miles
	}{
		{
			name: "Same Point",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 0},
			want: 0,
		},
		{
			name: "Equator 1 degree",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 1},
			want: 60, // 1 degree of arc = 60 nm
		},
		{
			name: "Singapore to Rotterdam",
			p1:   Point{Lat: 1.3521, Lon: 103.8198},
			p2:   Point{Lat: 51.9244, Lon: 4.4777},
			want: 5686, // great circle, approx
		},
		{
			name: "Dover to Calais",
			p1:   Point{Lat: 51.1279, Lon: 1.3134},
			p2:   Point{Lat: 50.9513, Lon: 1.8587},
			want: 22.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.p1, tt.p2)
			// Allow 1% margin due to sphere-radius approximation
			margin := tt.want * 0.01
			if math.Abs(got-tt.want) > margin && tt.want != 0 {
				t.Errorf("Distance() = %v, want %v (+/- %v)", got, tt.want, margin)
			}
		})
	}
}

func TestDestinationPoint(t *testing.T) {
	tests := []struct {
		name    string
		start   Point
		bearing float64
		dist    float64
		want    Point
	}{
		{
			name:    "Due North 60nm",
			start:   Point{Lat: 0, Lon: 0},
			bearing: 0,
			dist:    60,
			want:    Point{Lat: 1, Lon: 0},
		},
		{
			name:    "Due East 60nm on equator",
			start:   Point{Lat: 0, Lon: 0},
			bearing: 90,
			dist:    60,
			want:    Point{Lat: 0, Lon: 1},
		},
		{
			name:    "Across the antimeridian",
			start:   Point{Lat: 0, Lon: 179.5},
			bearing: 90,
			dist:    60,
			want:    Point{Lat: 0, Lon: -179.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DestinationPoint(tt.start, tt.bearing, tt.dist)
			if math.Abs(got.Lat-tt.want.Lat) > 0.01 || math.Abs(got.Lon-tt.want.Lon) > 0.01 {
				t.Errorf("DestinationPoint() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDestinationPointRoundTrip(t *testing.T) {
	// Travelling d nm then measuring the distance back should return d.
	start := Point{Lat: 35.0, Lon: -40.0}
	for _, brng := range []float64{0, 22.5, 45, 137, 275.5} {
		dest := DestinationPoint(start, brng, 120)
		if d := Distance(start, dest); math.Abs(d-120) > 0.1 {
			t.Errorf("bearing %v: round trip distance = %v, want 120", brng, d)
		}
	}
}

func TestBearing(t *testing.T) {
	if b := Bearing(Point{Lat: 0, Lon: 0}, Point{Lat: 1, Lon: 0}); math.Abs(b-0) > 0.01 {
		t.Errorf("Bearing north = %v, want 0", b)
	}
	if b := Bearing(Point{Lat: 0, Lon: 0}, Point{Lat: 0, Lon: 1}); math.Abs(b-90) > 0.01 {
		t.Errorf("Bearing east = %v, want 90", b)
	}
}

func TestNormalizeLon(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{181, -179},
		{-181, 179},
		{540, 180},
	}
	for _, tt := range tests {
		if got := NormalizeLon(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeLon(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
