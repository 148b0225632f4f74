package graph

import (
	"github.com/paulmach/orb"
	osmos "github.com/paulmach/osm"

	osmparser "github.com/azybler/gpsart/pkg/osm"
)

// Normalize turns a parsed OSM extract into an undirected, single-component
// graph: directed edges are merged (shortest length wins on a duplicate
// pair), node positions are attached, and every node outside the largest
// connected component is dropped — the Go equivalent of osmnx's
// retain_all=False default the Python reference relies on.
func Normalize(result *osmparser.ParseResult) *Graph {
	if len(result.Edges) == 0 {
		return New(0)
	}

	nodeIndex := make(map[osmos.NodeID]NodeID, len(result.NodeLat))
	g := New(len(result.NodeLat))

	idFor := func(id osmos.NodeID) NodeID {
		if nid, ok := nodeIndex[id]; ok {
			return nid
		}
		pos := orb.Point{result.NodeLon[id], result.NodeLat[id]}
		nid := g.AddNode(pos)
		nodeIndex[id] = nid
		return nid
	}

	for _, e := range result.Edges {
		u := idFor(e.FromNodeID)
		v := idFor(e.ToNodeID)
		lengthMeters := float64(e.Weight) / 1000.0
		g.AddEdge(u, v, lengthMeters)
	}

	largest := LargestComponent(g)
	if len(largest) == g.NumNodes() {
		return g
	}
	return g.Compact(largest)
}

// CompressChains repeatedly merges degree-2 nodes into the edge between
// their two neighbors, summing edge lengths, until no such node remains.
// A merge is skipped when the neighbors are already directly connected, to
// avoid creating a duplicate (and geometrically meaningless) parallel edge.
// Ported from the Python reference's _compress_degree_2_chains.
func CompressChains(g *Graph) *Graph {
	for {
		removedAny := false
		for u := 0; u < g.NumNodes(); u++ {
			node := NodeID(u)
			if g.Degree(node) != 2 {
				continue
			}
			a, b := g.Adj[node][0], g.Adj[node][1]
			if a.To == b.To {
				continue // parallel edges back to the same neighbor
			}
			if g.HasEdge(a.To, b.To) {
				continue
			}
			g.AddEdge(a.To, b.To, a.Length+b.Length)
			g.RemoveNode(node)
			removedAny = true
		}
		if !removedAny {
			break
		}
	}

	keep := make([]NodeID, 0, g.NumNodes())
	for u := 0; u < g.NumNodes(); u++ {
		if g.Degree(NodeID(u)) > 0 {
			keep = append(keep, NodeID(u))
		}
	}
	if len(keep) == g.NumNodes() {
		return g
	}
	return g.Compact(keep)
}
