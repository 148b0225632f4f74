// Package elevation computes ascent/descent/grade metrics for a finished
// route, given an injectable elevation lookup.
package elevation

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/azybler/gpsart/pkg/geo"
)

// Lookup resolves the elevation, in meters, of each point in coords. A real
// implementation might call out to an SRTM/DEM service; tests can supply a
// fixed table.
type Lookup func(coords []orb.Point) ([]float64, error)

// Metrics summarizes a route's vertical profile.
type Metrics struct {
	MaxElevationDiff     int
	TotalAscent          float64
	TotalDescent         float64
	TotalElevationChange float64
	AverageGrade         float64
	MaxGrade             float64
}

// maxGradePercent caps reported grades, since a near-zero horizontal
// distance between two points can otherwise produce an arbitrarily large
// (and not meaningful) percentage.
const maxGradePercent = 99.99

// minSegmentDistanceM floors the horizontal distance used in a grade
// calculation, avoiding a division blowup for two nearly-coincident points.
const minSegmentDistanceM = 0.1

// ComputeRouteMetrics computes elevation metrics for coords using lookup. A
// nil lookup, fewer than 2 coordinates, or a lookup error all yield the
// all-zero fallback metrics.
func ComputeRouteMetrics(coords []orb.Point, lookup Lookup) Metrics {
	if len(coords) < 2 || lookup == nil {
		return Metrics{}
	}

	elevations, err := lookup(coords)
	if err != nil || len(elevations) != len(coords) {
		return Metrics{}
	}

	var totalAscent, totalDescent, totalChange float64
	var grades []float64

	for i := 0; i < len(coords)-1; i++ {
		diff := elevations[i+1] - elevations[i]
		dist := geo.HaversinePoints(coords[i], coords[i+1])
		if dist < minSegmentDistanceM {
			dist = minSegmentDistanceM
		}

		totalChange += math.Abs(diff)
		if diff > 0 {
			totalAscent += diff
		} else {
			totalDescent += -diff
		}

		gradeRatio := diff / dist
		grades = append(grades, math.Abs(gradeRatio)*100)
	}

	maxElev, minElev := elevations[0], elevations[0]
	for _, e := range elevations {
		if e > maxElev {
			maxElev = e
		}
		if e < minElev {
			minElev = e
		}
	}

	var avgGrade, maxGrade float64
	if len(grades) > 0 {
		sum := 0.0
		for _, g := range grades {
			sum += g
			if g > maxGrade {
				maxGrade = g
			}
		}
		avgGrade = sum / float64(len(grades))
	}

	return Metrics{
		MaxElevationDiff:     int(math.Round(maxElev - minElev)),
		TotalAscent:          round2(totalAscent),
		TotalDescent:         round2(totalDescent),
		TotalElevationChange: round2(totalChange),
		AverageGrade:         round2(math.Min(avgGrade, maxGradePercent)),
		MaxGrade:             round2(math.Min(maxGrade, maxGradePercent)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
