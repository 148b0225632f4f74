// Package spatial indexes graph nodes by location for nearest-neighbor and
// radius queries.
package spatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"github.com/azybler/gpsart/pkg/geo"
	"github.com/azybler/gpsart/pkg/graph"
)

// metersPerDegree is the coarse degrees-to-meters conversion used to size
// the cell-window search radius, same approximation the Python reference
// uses (1 degree latitude ~= 111 km).
const metersPerDegree = 111_000.0

// NodeDist pairs a node with its exact haversine distance from a query point.
type NodeDist struct {
	Node graph.NodeID
	Dist float64
}

type cellKey struct {
	lat, lon int64
}

// Grid is a uniform lon/lat grid over a graph's nodes, with an R-tree
// fallback for queries the cell index can't answer (grid index yields no
// candidates, or the grid wasn't built with the points in question).
type Grid struct {
	g        *graph.Graph
	cellSize float64
	cells    map[cellKey][]graph.NodeID
	tree     rtree.RTreeG[graph.NodeID]
}

func cellOf(p orb.Point, cellSize float64) cellKey {
	return cellKey{
		lat: int64(math.Floor(p.Y() / cellSize)),
		lon: int64(math.Floor(p.X() / cellSize)),
	}
}

// Build indexes every node of g into a grid of cellSideDeg-degree cells,
// and also inserts every node into an R-tree used by Nearest's fallback
// path. cellSideDeg of 0.0005 matches the Python reference's default
// (~50 m per cell).
func Build(g *graph.Graph, cellSideDeg float64) *Grid {
	idx := &Grid{
		g:        g,
		cellSize: cellSideDeg,
		cells:    make(map[cellKey][]graph.NodeID, g.NumNodes()),
	}
	for i := 0; i < g.NumNodes(); i++ {
		nid := graph.NodeID(i)
		p := g.Pos(nid)
		key := cellOf(p, cellSideDeg)
		idx.cells[key] = append(idx.cells[key], nid)
		coord := [2]float64{p.X(), p.Y()}
		idx.tree.Insert(coord, coord, nid)
	}
	return idx
}

// QueryRadius returns every node within radiusM meters of p, using the
// inclusive cell window implied by the radius (converted to degrees via the
// same coarse 111 km/degree approximation the Python reference uses),
// followed by an exact haversine filter.
func (idx *Grid) QueryRadius(p orb.Point, radiusM float64) []NodeDist {
	if len(idx.cells) == 0 {
		return nil
	}
	rDeg := radiusM / metersPerDegree
	latLo := int64(math.Floor((p.Y() - rDeg) / idx.cellSize))
	latHi := int64(math.Floor((p.Y() + rDeg) / idx.cellSize))
	lonLo := int64(math.Floor((p.X() - rDeg) / idx.cellSize))
	lonHi := int64(math.Floor((p.X() + rDeg) / idx.cellSize))

	var result []NodeDist
	for la := latLo; la <= latHi; la++ {
		for lo := lonLo; lo <= lonHi; lo++ {
			for _, nid := range idx.cells[cellKey{la, lo}] {
				d := geo.HaversinePoints(p, idx.g.Pos(nid))
				if d <= radiusM {
					result = append(result, NodeDist{Node: nid, Dist: d})
				}
			}
		}
	}
	return result
}

// Nearest returns the node closest to p within searchRadiusM. If the cell
// window around p holds no candidates (or the grid is empty), it falls back
// to an expanding R-tree box search over the whole indexed domain — same
// observable contract as a full linear scan, just faster.
func (idx *Grid) Nearest(p orb.Point, searchRadiusM float64) (graph.NodeID, bool) {
	candidates := idx.QueryRadius(p, searchRadiusM)
	if len(candidates) > 0 {
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.Dist < best.Dist {
				best = c
			}
		}
		return best.Node, true
	}
	return idx.nearestFallback(p)
}

// nearestFallback queries the R-tree with an expanding bounding box until a
// candidate is found or the box has grown to cover the whole planet, then
// searches once more over a box wide enough to hold every node within the
// best distance found, since a node just outside the first box can be
// closer than the best one inside it.
func (idx *Grid) nearestFallback(p orb.Point) (graph.NodeID, bool) {
	if idx.tree.Len() == 0 {
		return 0, false
	}

	best := graph.NodeID(0)
	bestDist := math.Inf(1)
	found := false
	visit := func(_, _ [2]float64, nid graph.NodeID) bool {
		d := geo.HaversinePoints(p, idx.g.Pos(nid))
		if d < bestDist {
			bestDist = d
			best = nid
			found = true
		}
		return true
	}

	for halfWidth := 0.01; halfWidth < 360; halfWidth *= 4 {
		min := [2]float64{p.X() - halfWidth, p.Y() - halfWidth}
		max := [2]float64{p.X() + halfWidth, p.Y() + halfWidth}
		idx.tree.Search(min, max, visit)
		if found {
			latSpan := bestDist / 110_000.0
			lonSpan := latSpan / math.Max(math.Cos(p.Y()*math.Pi/180.0), 1e-3)
			min = [2]float64{p.X() - lonSpan, p.Y() - latSpan}
			max = [2]float64{p.X() + lonSpan, p.Y() + latSpan}
			idx.tree.Search(min, max, visit)
			return best, true
		}
	}
	return 0, false
}
