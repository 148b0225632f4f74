package graph

import (
	"testing"

	"github.com/paulmach/orb"
	osmos "github.com/paulmach/osm"

	osmparser "github.com/azybler/gpsart/pkg/osm"
)

func TestNormalizeSimpleTriangle(t *testing.T) {
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 100, ToNodeID: 200, Weight: 1000},
			{FromNodeID: 200, ToNodeID: 300, Weight: 2000},
			{FromNodeID: 300, ToNodeID: 100, Weight: 3000},
		},
		NodeLat: map[osmos.NodeID]float64{100: 1.0, 200: 1.1, 300: 1.0},
		NodeLon: map[osmos.NodeID]float64{100: 103.0, 200: 103.0, 300: 103.1},
	}

	g := Normalize(result)

	if g.NumNodes() != 3 {
		t.Fatalf("NumNodes = %d, want 3", g.NumNodes())
	}
	for u := 0; u < g.NumNodes(); u++ {
		if g.Degree(NodeID(u)) != 2 {
			t.Errorf("node %d has degree %d, want 2 (triangle)", u, g.Degree(NodeID(u)))
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	result := &osmparser.ParseResult{
		NodeLat: map[osmos.NodeID]float64{},
		NodeLon: map[osmos.NodeID]float64{},
	}
	g := Normalize(result)
	if g.NumNodes() != 0 {
		t.Errorf("NumNodes = %d, want 0", g.NumNodes())
	}
}

func TestNormalizeUndirectsDuplicateEdges(t *testing.T) {
	// A <-> B expressed as two directed edges of different weight;
	// the shorter one should win on the merged undirected edge.
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 1, ToNodeID: 2, Weight: 500},
			{FromNodeID: 2, ToNodeID: 1, Weight: 700},
		},
		NodeLat: map[osmos.NodeID]float64{1: 1.0, 2: 1.1},
		NodeLon: map[osmos.NodeID]float64{1: 103.0, 2: 103.1},
	}

	g := Normalize(result)
	if g.NumNodes() != 2 {
		t.Fatalf("NumNodes = %d, want 2", g.NumNodes())
	}
	for u := 0; u < g.NumNodes(); u++ {
		if g.Degree(NodeID(u)) != 1 {
			t.Errorf("node %d degree = %d, want 1", u, g.Degree(NodeID(u)))
		}
		for _, e := range g.Adj[u] {
			if e.Length != 0.5 {
				t.Errorf("edge length = %f, want 0.5 (shorter of the two directed weights)", e.Length)
			}
		}
	}
}

func TestNormalizeDropsSmallerComponent(t *testing.T) {
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			// Component 1: triangle (3 nodes)
			{FromNodeID: 10, ToNodeID: 20, Weight: 100},
			{FromNodeID: 20, ToNodeID: 30, Weight: 200},
			{FromNodeID: 30, ToNodeID: 10, Weight: 300},
			// Component 2: isolated pair
			{FromNodeID: 40, ToNodeID: 50, Weight: 400},
		},
		NodeLat: map[osmos.NodeID]float64{10: 1.0, 20: 1.1, 30: 1.2, 40: 2.0, 50: 2.1},
		NodeLon: map[osmos.NodeID]float64{10: 103.0, 20: 103.1, 30: 103.2, 40: 104.0, 50: 104.1},
	}

	g := Normalize(result)
	if g.NumNodes() != 3 {
		t.Fatalf("NumNodes = %d, want 3 (only the largest component survives)", g.NumNodes())
	}
}

func TestCompressChainsLinearPath(t *testing.T) {
	// 0 - 1 - 2 - 3, nodes 1 and 2 are degree-2 and should compress away.
	g := New(4)
	for i := 0; i < 4; i++ {
		g.AddNode(orb.Point{float64(i), 0})
	}
	g.AddEdge(0, 1, 10)
	g.AddEdge(1, 2, 20)
	g.AddEdge(2, 3, 30)

	out := CompressChains(g)
	if out.NumNodes() != 2 {
		t.Fatalf("NumNodes = %d, want 2", out.NumNodes())
	}
	if out.Degree(0) != 1 || out.Degree(1) != 1 {
		t.Fatalf("expected both remaining nodes to have degree 1")
	}
	if out.Adj[0][0].Length != 60 {
		t.Errorf("merged edge length = %f, want 60", out.Adj[0][0].Length)
	}
}

func TestCompressChainsSkipsWhenDirectEdgeExists(t *testing.T) {
	// Triangle 0-1-2 plus a degree-2 node 3 bridging 0 and 1: since 0-1
	// already has a direct edge, node 3 must NOT be compressed away.
	g := New(4)
	for i := 0; i < 4; i++ {
		g.AddNode(orb.Point{float64(i), 0})
	}
	g.AddEdge(0, 1, 5)
	g.AddEdge(1, 2, 5)
	g.AddEdge(2, 0, 5)
	g.AddEdge(0, 3, 1)
	g.AddEdge(3, 1, 1)

	out := CompressChains(g)
	if out.NumNodes() != 4 {
		t.Fatalf("NumNodes = %d, want 4 (node 3 must survive)", out.NumNodes())
	}
}
