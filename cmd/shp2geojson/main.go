// Command shp2geojson converts a Natural Earth land shapefile into the
// GeoJSON polygon dataset consumed by the land mask. Rings are optionally
// simplified and tiny islets dropped to keep the route search fast.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

func main() {
	inputPath := flag.String("input", "", "Path to input .shp file")
	outputPath := flag.String("output", "", "Path to output .geojson file")
	tolerance := flag.Float64("tolerance", 0, "Douglas-Peucker simplification tolerance in degrees (0 disables)")
	minArea := flag.Float64("min-area", 0, "Drop outer rings smaller than this planar area in square degrees")
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		flag.Usage()
		log.Fatal("Input and output paths are required")
	}

	if err := run(*inputPath, *outputPath, *tolerance, *minArea); err != nil {
		log.Fatal(err)
	}
}

func run(inputPath, outputPath string, tolerance, minArea float64) error {
	shape, err := shp.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer shape.Close()

	fc := geojson.NewFeatureCollection()
	var kept, dropped int

	for shape.Next() {
		_, p := shape.Shape()

		poly, ok := p.(*shp.Polygon)
		if !ok {
			// The mask only tests point-in-polygon; lines and points
			// from mixed datasets carry no coastline information.
			continue
		}

		for _, ring := range splitRings(poly) {
			if minArea > 0 && math.Abs(planar.Area(ring)) < minArea {
				dropped++
				continue
			}
			if tolerance > 0 {
				ring = simplify.DouglasPeucker(tolerance).Ring(ring)
			}
			if len(ring) < 4 {
				dropped++
				continue
			}
			fc.Append(geojson.NewFeature(orb.Polygon{ring}))
			kept++
		}
	}

	if err := shape.Err(); err != nil {
		return fmt.Errorf("error iterating shapes: %w", err)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Printf("Wrote %d rings to %s (%d dropped)\n", kept, outputPath, dropped)
	return nil
}

// splitRings explodes a shapefile polygon record into closed rings. Each
// part becomes its own ring; holes are emitted like outer rings since the
// mask treats lakes as land anyway.
func splitRings(s *shp.Polygon) []orb.Ring {
	rings := make([]orb.Ring, 0, s.NumParts)
	for i := 0; i < int(s.NumParts); i++ {
		start := s.Parts[i]
		end := s.NumPoints
		if i < int(s.NumParts)-1 {
			end = s.Parts[i+1]
		}

		ring := make(orb.Ring, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, orb.Point{s.Points[j].X, s.Points[j].Y})
		}
		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		rings = append(rings, ring)
	}
	return rings
}
