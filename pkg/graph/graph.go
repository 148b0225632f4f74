package graph

import "github.com/paulmach/orb"

// NodeID indexes into a Graph's Nodes/Adj slices.
type NodeID uint32

// Edge is one directed adjacency entry of an undirected graph: every edge is
// stored on both endpoints.
type Edge struct {
	To     NodeID
	Length float64 // meters
}

// Graph is a simple undirected graph over geographic points, indexed by
// integer NodeID instead of pointer-linked nodes.
type Graph struct {
	Nodes []orb.Point
	Adj   [][]Edge
}

// New creates an empty graph with room for n nodes.
func New(n int) *Graph {
	return &Graph{
		Nodes: make([]orb.Point, 0, n),
		Adj:   make([][]Edge, 0, n),
	}
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int { return len(g.Nodes) }

// AddNode appends a node at the given position and returns its id.
func (g *Graph) AddNode(pos orb.Point) NodeID {
	id := NodeID(len(g.Nodes))
	g.Nodes = append(g.Nodes, pos)
	g.Adj = append(g.Adj, nil)
	return id
}

// Pos returns the geographic position of node u.
func (g *Graph) Pos(u NodeID) orb.Point { return g.Nodes[u] }

// Neighbors returns the adjacency list of node u.
func (g *Graph) Neighbors(u NodeID) []Edge { return g.Adj[u] }

// Degree returns the number of edges incident to u.
func (g *Graph) Degree(u NodeID) int { return len(g.Adj[u]) }

// HasEdge reports whether an edge between u and v already exists.
func (g *Graph) HasEdge(u, v NodeID) bool {
	for _, e := range g.Adj[u] {
		if e.To == v {
			return true
		}
	}
	return false
}

// AddEdge inserts an undirected edge u-v with the given length, unless an
// edge between the two already exists, in which case the shorter length
// wins (mirrors the teacher's "shortest edge wins on duplicate pairs" CSR
// construction, generalized from directed to undirected).
func (g *Graph) AddEdge(u, v NodeID, length float64) {
	if u == v {
		return
	}
	if g.replaceIfShorter(u, v, length) {
		g.replaceIfShorter(v, u, length)
		return
	}
	g.Adj[u] = append(g.Adj[u], Edge{To: v, Length: length})
	g.Adj[v] = append(g.Adj[v], Edge{To: u, Length: length})
}

// replaceIfShorter updates an existing u->v entry if length is shorter,
// and reports whether an entry existed at all.
func (g *Graph) replaceIfShorter(u, v NodeID, length float64) bool {
	for i, e := range g.Adj[u] {
		if e.To == v {
			if length < e.Length {
				g.Adj[u][i].Length = length
			}
			return true
		}
	}
	return false
}

// RemoveNode deletes all edges incident to u, leaving it as an isolate.
// It does not compact NodeIDs; callers wanting a compacted graph should
// use Compact.
func (g *Graph) RemoveNode(u NodeID) {
	for _, e := range g.Adj[u] {
		g.Adj[e.To] = removeEdgeTo(g.Adj[e.To], u)
	}
	g.Adj[u] = nil
}

func removeEdgeTo(edges []Edge, target NodeID) []Edge {
	out := edges[:0]
	for _, e := range edges {
		if e.To != target {
			out = append(out, e)
		}
	}
	return out
}

// Compact rebuilds the graph keeping only the given nodes, remapping ids to
// a dense 0..n-1 range in the order given.
func (g *Graph) Compact(keep []NodeID) *Graph {
	oldToNew := make(map[NodeID]NodeID, len(keep))
	for newID, oldID := range keep {
		oldToNew[oldID] = NodeID(newID)
	}

	out := New(len(keep))
	for _, oldID := range keep {
		out.AddNode(g.Nodes[oldID])
	}
	for _, oldID := range keep {
		newU, ok := oldToNew[oldID]
		if !ok {
			continue
		}
		for _, e := range g.Adj[oldID] {
			newV, ok := oldToNew[e.To]
			if !ok || newV <= newU {
				continue // add once, from the lower-indexed endpoint
			}
			out.AddEdge(newU, newV, e.Length)
		}
	}
	return out
}
