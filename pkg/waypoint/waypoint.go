// Package waypoint picks a sequence of graph nodes that trace a drawn
// figure: each point sampled along the figure is matched to a nearby graph
// node chosen by proximity to the figure's local segment and, optionally,
// by how well the node continues the figure's direction of travel.
package waypoint

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/azybler/gpsart/pkg/geo"
	"github.com/azybler/gpsart/pkg/graph"
	"github.com/azybler/gpsart/pkg/spatial"
)

// defaultSearchRadiusM is the fallback radius used when snapping a point to
// its nearest graph node outside of the segment-aware selection loop.
const defaultSearchRadiusM = 500.0

// candidateRadiusM bounds how far from a sampled figure point a graph node
// may be considered as that point's waypoint candidate.
const candidateRadiusM = 100.0

// directionPenaltyScale converts a [-1, 1] alignment score into a distance
// penalty, in meters, comparable to the segment-distance score it's added to.
const directionPenaltyScale = 50.0

// SelectOptions configures waypoint selection.
type SelectOptions struct {
	NSamples          int     // number of points to resample the figure to; 0 means 30
	UseSegmentNearest bool    // favor nodes near the local figure segment, not just nearest-overall
	UseDirection      bool    // penalize nodes that don't continue the figure's direction of travel
	DirectionWeight   float64 // weight of the direction penalty relative to distance; 0 means 0.4
}

func (o SelectOptions) nSamples() int {
	if o.NSamples <= 0 {
		return 30
	}
	return o.NSamples
}

func (o SelectOptions) directionWeight() float64 {
	if o.DirectionWeight == 0 {
		return 0.4
	}
	return o.DirectionWeight
}

// Select resamples figure evenly and matches each sample to a graph node,
// then pins the sample closest to start to the node nearest start itself so
// the resulting path departs from and returns to the requested start point.
// It returns nil if figure has fewer than two points.
func Select(g *graph.Graph, idx *spatial.Grid, start orb.Point, figure []orb.Point, opts SelectOptions) []graph.NodeID {
	if len(figure) < 2 {
		return nil
	}

	startNode, ok := idx.Nearest(start, defaultSearchRadiusM)
	if !ok {
		return nil
	}

	sampled := SampleEvenly(figure, opts.nSamples())

	var waypoints []graph.NodeID
	var lastNode graph.NodeID
	haveLastNode := false
	prevPos := g.Pos(startNode)

	for i, pt := range sampled {
		if !opts.UseSegmentNearest {
			node, found := idx.Nearest(pt, defaultSearchRadiusM)
			if !found {
				continue
			}
			if !haveLastNode || node != lastNode {
				waypoints = append(waypoints, node)
				lastNode, haveLastNode = node, true
			}
			continue
		}

		var segStart, segEnd orb.Point
		if i < len(sampled)-1 {
			segStart, segEnd = pt, sampled[i+1]
		} else {
			segStart, segEnd = sampled[i-1], pt
		}

		var directionVec orb.Point
		hasDirection := opts.UseDirection
		if hasDirection {
			directionVec = directionAt(sampled, i)
		}

		candidates := idx.QueryRadius(pt, candidateRadiusM)

		bestNode := graph.NodeID(0)
		haveBest := false
		bestScore := math.Inf(1)

		for _, c := range candidates {
			if haveLastNode && c.Node == lastNode {
				continue
			}
			pos := g.Pos(c.Node)
			d, _ := geo.PointToSegmentDistOrb(pos, segStart, segEnd)

			score := d
			if hasDirection {
				toNode := orb.Point{pos.X() - prevPos.X(), pos.Y() - prevPos.Y()}
				normTo := math.Hypot(toNode.X(), toNode.Y())
				align := 1.0
				if normTo >= 1e-9 {
					align = (toNode.X()*directionVec.X() + toNode.Y()*directionVec.Y()) / normTo
					align = math.Max(-1.0, math.Min(1.0, align))
				}
				penalty := directionPenaltyScale * (1.0 - align)
				score = d + opts.directionWeight()*penalty
			}

			if score < bestScore {
				bestScore = score
				bestNode = c.Node
				haveBest = true
			}
		}

		if haveBest {
			waypoints = append(waypoints, bestNode)
			lastNode, haveLastNode = bestNode, true
			prevPos = g.Pos(bestNode)
			continue
		}

		node, found := idx.Nearest(pt, defaultSearchRadiusM)
		if !found {
			continue
		}
		if !haveLastNode || node != lastNode {
			waypoints = append(waypoints, node)
			lastNode, haveLastNode = node, true
			prevPos = g.Pos(node)
		}
	}

	if len(waypoints) == 0 {
		return nil
	}

	departureNode, ok := idx.Nearest(start, defaultSearchRadiusM)
	if !ok {
		return waypoints
	}

	iClosest := 0
	bestDistSq := math.Inf(1)
	for i, p := range sampled {
		dx := p.X() - start.X()
		dy := p.Y() - start.Y()
		distSq := dx*dx + dy*dy
		if distSq < bestDistSq {
			bestDistSq = distSq
			iClosest = i
		}
	}

	if iClosest < len(waypoints) {
		waypoints[iClosest] = departureNode
	} else {
		waypoints = append(waypoints, departureNode)
	}

	return waypoints
}

// SampleEvenly resamples a polyline to n points evenly spaced by cumulative
// haversine distance along it, from its first point to its last; n <= 1
// yields just those two endpoints. Polylines shorter than two points, or
// with zero total length, are returned unchanged.
func SampleEvenly(points []orb.Point, n int) []orb.Point {
	if len(points) < 2 {
		return points
	}

	segLengths := make([]float64, len(points)-1)
	totalLen := 0.0
	for i := range segLengths {
		segLengths[i] = geo.HaversinePoints(points[i], points[i+1])
		totalLen += segLengths[i]
	}
	if totalLen <= 0 {
		return points
	}

	cum := make([]float64, len(segLengths)+1)
	for i, l := range segLengths {
		cum[i+1] = cum[i] + l
	}

	var targets []float64
	if n <= 1 {
		targets = []float64{0.0, totalLen}
	} else {
		step := totalLen / float64(n-1)
		targets = make([]float64, n)
		for i := range targets {
			targets[i] = step * float64(i)
		}
	}

	sampled := make([]orb.Point, 0, len(targets))
	segIdx := 0
	for _, t := range targets {
		for segIdx < len(segLengths)-1 && cum[segIdx+1] < t {
			segIdx++
		}
		segStart := cum[segIdx]
		segLen := segLengths[segIdx]
		ratio := 0.0
		if segLen > 0 {
			ratio = math.Min(1.0, (t-segStart)/segLen)
		}

		p0, p1 := points[segIdx], points[segIdx+1]
		lon := p0.X() + ratio*(p1.X()-p0.X())
		lat := p0.Y() + ratio*(p1.Y()-p0.Y())
		sampled = append(sampled, orb.Point{lon, lat})
	}
	// The last target is the full length, i.e. the polyline's end point;
	// pin it exactly rather than keep a rounded interpolation.
	sampled[len(sampled)-1] = points[len(points)-1]

	return sampled
}

// directionAt returns the unit vector of travel at sampled[i], via central
// difference (forward/backward difference at the endpoints). A degenerate
// (near-zero-length) difference falls back to due east.
func directionAt(sampled []orb.Point, i int) orb.Point {
	if len(sampled) < 2 {
		return orb.Point{1, 0}
	}

	var d orb.Point
	switch {
	case i <= 0:
		d = orb.Point{sampled[1].X() - sampled[0].X(), sampled[1].Y() - sampled[0].Y()}
	case i >= len(sampled)-1:
		last := len(sampled) - 1
		d = orb.Point{sampled[last].X() - sampled[last-1].X(), sampled[last].Y() - sampled[last-1].Y()}
	default:
		d = orb.Point{sampled[i+1].X() - sampled[i-1].X(), sampled[i+1].Y() - sampled[i-1].Y()}
	}

	n := math.Hypot(d.X(), d.Y())
	if n < 1e-9 {
		return orb.Point{1, 0}
	}
	return orb.Point{d.X() / n, d.Y() / n}
}
