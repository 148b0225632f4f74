// Package evaluate scores candidate GPS-art routes against the figure they
// were drawn to trace, and runs the worker pool that searches placement,
// rotation, and cyclic-start combinations for the best-scoring routes.
package evaluate

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/azybler/gpsart/pkg/geo"
)

// similaritySamples is the number of sub-samples taken along each figure
// segment when scoring a route against it.
const similaritySamples = 50

// Similarity scores how closely route follows original, as the average
// (over figure segments) of the minimum distance from any sub-sampled point
// on that segment to the nearest point on route. Lower is better; +Inf if
// either input is empty.
//
// Segments are iterated i = 0..len(original)-3 inclusive — the figure's
// final segment is never scored. This reproduces an off-by-one in the
// Python reference (`range(len(original_segments) - 1)` where
// original_segments already has len(original)-1 entries) rather than fixing
// it, since fixing it would shift scores for every route relative to a
// pipeline already tuned against the biased version.
func Similarity(original, route []orb.Point) float64 {
	if len(original) == 0 || len(route) == 0 {
		return math.Inf(1)
	}

	numSegments := len(original) - 1
	if numSegments < 1 {
		return math.Inf(1)
	}

	totalDistance := 0.0
	segmentCount := 0

	for i := 0; i < numSegments-1; i++ {
		s, e := original[i], original[i+1]
		minDistance := math.Inf(1)

		for k := 0; k <= similaritySamples; k++ {
			t := float64(k) / float64(similaritySamples)
			lon := s.X() + t*(e.X()-s.X())
			lat := s.Y() + t*(e.Y()-s.Y())
			origPoint := orb.Point{lon, lat}

			minPointDist := math.Inf(1)
			for _, rp := range route {
				d := geo.HaversinePoints(origPoint, rp)
				if d < minPointDist {
					minPointDist = d
				}
			}

			if minPointDist < minDistance {
				minDistance = minPointDist
			}
		}

		totalDistance += minDistance
		segmentCount++
	}

	if segmentCount == 0 {
		return math.Inf(1)
	}
	return totalDistance / float64(segmentCount)
}
