package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []NodeID
	rank   []byte // byte is sufficient — max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n int) *UnionFind {
	parent := make([]NodeID, n)
	size := make([]uint32, n)
	for i := range parent {
		parent[i] = NodeID(i)
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x NodeID) NodeID {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y NodeID) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// LargestComponent returns the node ids belonging to the largest connected
// component of g. Mirrors osmnx's retain_all=False default, which the
// network fetcher relies on to drop small disconnected fragments (a
// footbridge recorded on its own subgraph, a parking lot access road with
// no through connection) before any routing is attempted.
func LargestComponent(g *Graph) []NodeID {
	n := g.NumNodes()
	if n == 0 {
		return nil
	}

	uf := NewUnionFind(n)
	for u := 0; u < n; u++ {
		for _, e := range g.Adj[u] {
			uf.Union(NodeID(u), e.To)
		}
	}

	bestRoot := NodeID(0)
	bestSize := uint32(0)
	for i := 0; i < n; i++ {
		root := uf.Find(NodeID(i))
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	nodes := make([]NodeID, 0, bestSize)
	for i := 0; i < n; i++ {
		if uf.Find(NodeID(i)) == bestRoot {
			nodes = append(nodes, NodeID(i))
		}
	}
	return nodes
}
