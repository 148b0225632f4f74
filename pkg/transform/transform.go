// Package transform applies rigid-body translation, rotation, and
// distance-fitting scale transforms to a drawn figure in geographic
// coordinates, so it can be placed and oriented around a route's start
// point before waypoint selection.
package transform

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/azybler/gpsart/pkg/geo"
)

// Centroid returns the arithmetic mean of a point set's lon/lat components.
func Centroid(points []orb.Point) orb.Point {
	if len(points) == 0 {
		return orb.Point{}
	}
	var sumLon, sumLat float64
	for _, p := range points {
		sumLon += p.X()
		sumLat += p.Y()
	}
	n := float64(len(points))
	return orb.Point{sumLon / n, sumLat / n}
}

// Translate shifts every point by (dLon, dLat).
func Translate(points []orb.Point, dLon, dLat float64) []orb.Point {
	out := make([]orb.Point, len(points))
	for i, p := range points {
		out[i] = orb.Point{p.X() + dLon, p.Y() + dLat}
	}
	return out
}

// Rotate turns points counter-clockwise (on a north-up map) by angleDegrees
// about center, working in a
// local-planar km approximation (lat degrees scale at 111 km/degree, lon
// degrees scale at 111*cos(center lat) km/degree) rather than geodesically —
// adequate over the few-kilometer span a drawn figure spans.
func Rotate(points []orb.Point, center orb.Point, angleDegrees float64) []orb.Point {
	if len(points) == 0 {
		return nil
	}

	angleRad := angleDegrees * math.Pi / 180.0
	cosA := math.Cos(angleRad)
	sinA := math.Sin(angleRad)

	centerLon, centerLat := center.X(), center.Y()
	const latScale = 111.0
	lonScale := 111.0 * math.Cos(centerLat*math.Pi/180.0)

	out := make([]orb.Point, len(points))
	for i, p := range points {
		dx := (p.X() - centerLon) * lonScale
		dy := (p.Y() - centerLat) * latScale

		dxRot := dx*cosA - dy*sinA
		dyRot := dx*sinA + dy*cosA

		newLon := centerLon + dxRot/lonScale
		newLat := centerLat + dyRot/latScale
		out[i] = orb.Point{newLon, newLat}
	}
	return out
}

// Scale fits a drawing to targetDistanceM by scaling every point's offset
// from startPoint by the ratio of the target path length to the drawing's
// current (haversine) path length. A drawing shorter than 1 micrometer is
// returned unchanged to avoid dividing by ~zero.
func Scale(points []orb.Point, startPoint orb.Point, targetDistanceM float64) []orb.Point {
	currentDistance := geo.PathLength(points)
	if currentDistance < 1e-6 {
		return points
	}

	ratio := targetDistanceM / currentDistance
	startLon, startLat := startPoint.X(), startPoint.Y()

	out := make([]orb.Point, len(points))
	for i, p := range points {
		dLon := p.X() - startLon
		dLat := p.Y() - startLat
		out[i] = orb.Point{startLon + dLon*ratio, startLat + dLat*ratio}
	}
	return out
}
