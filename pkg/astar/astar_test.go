package astar

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/azybler/gpsart/pkg/graph"
)

// buildLineGraph lays out n nodes along the equator, step degrees apart,
// each connected to its immediate neighbor.
func buildLineGraph(t *testing.T, n int, step float64) *graph.Graph {
	t.Helper()
	g := graph.New(n)
	ids := make([]graph.NodeID, n)
	for i := 0; i < n; i++ {
		ids[i] = g.AddNode(orb.Point{float64(i) * step, 0})
	}
	for i := 0; i+1 < n; i++ {
		g.AddEdge(ids[i], ids[i+1], 100)
	}
	return g
}

func TestRunFindsDirectPath(t *testing.T) {
	g := buildLineGraph(t, 5, 0.0009)
	path, ok := Run(g, 0, 4)
	if !ok {
		t.Fatal("expected a path")
	}
	want := []graph.NodeID{0, 1, 2, 3, 4}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("path[%d] = %d, want %d", i, path[i], want[i])
		}
	}
}

func TestRunSameStartAndGoal(t *testing.T) {
	g := buildLineGraph(t, 3, 0.0009)
	path, ok := Run(g, 1, 1)
	if !ok || len(path) != 1 || path[0] != 1 {
		t.Errorf("Run(1,1) = %v, %v, want [1], true", path, ok)
	}
}

func TestRunUnreachable(t *testing.T) {
	g := graph.New(2)
	g.AddNode(orb.Point{0, 0})
	g.AddNode(orb.Point{10, 10})
	_, ok := Run(g, 0, 1)
	if ok {
		t.Error("expected no path between disconnected nodes")
	}
}

func TestBuildFullPathStitchesAndDedupes(t *testing.T) {
	g := buildLineGraph(t, 5, 0.0009)
	waypoints := []graph.NodeID{0, 2, 4}

	path, ok := BuildFullPath(waypoints, 0, g)
	if !ok {
		t.Fatal("expected a full path")
	}
	want := []graph.NodeID{0, 1, 2, 3, 4}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("path[%d] = %d, want %d", i, path[i], want[i])
		}
	}
}

func TestBuildFullPathCyclicShift(t *testing.T) {
	g := buildLineGraph(t, 5, 0.0009)
	waypoints := []graph.NodeID{0, 2, 4}

	path, ok := BuildFullPath(waypoints, 1, g)
	if !ok {
		t.Fatal("expected a full path")
	}
	// shifted sequence is [2, 4, 0]
	if path[0] != 2 {
		t.Errorf("path[0] = %d, want 2 (cyclic shift starts at index 1)", path[0])
	}
}

func TestBuildFullPathEmptyWaypoints(t *testing.T) {
	g := buildLineGraph(t, 3, 0.0009)
	_, ok := BuildFullPath(nil, 0, g)
	if ok {
		t.Error("expected failure on empty waypoint list")
	}
}
