package evaluate

import (
	"context"
	"testing"

	"github.com/paulmach/orb"

	"github.com/azybler/gpsart/pkg/graph"
	"github.com/azybler/gpsart/pkg/spatial"
)

// buildGridGraph lays a 6x6 grid of nodes ~80m apart, each connected to its
// immediate neighbors, centered near the equator.
func buildGridGraph(t *testing.T) *graph.Graph {
	t.Helper()
	const step = 0.0007
	const size = 6
	g := graph.New(size * size)
	ids := make([][]graph.NodeID, size)
	for r := 0; r < size; r++ {
		ids[r] = make([]graph.NodeID, size)
		for c := 0; c < size; c++ {
			ids[r][c] = g.AddNode(orb.Point{(float64(c) - 2.5) * step, (float64(r) - 2.5) * step})
		}
	}
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if c+1 < size {
				g.AddEdge(ids[r][c], ids[r][c+1], 80)
			}
			if r+1 < size {
				g.AddEdge(ids[r][c], ids[r+1][c], 80)
			}
		}
	}
	return g
}

func TestEvaluateProducesRankedCandidates(t *testing.T) {
	g := buildGridGraph(t)
	idx := spatial.Build(g, 0.0005)

	start := orb.Point{0, 0}
	drawing := []orb.Point{
		{0, 0},
		{0.0007, 0},
		{0.0014, 0.0007},
	}

	result, err := Evaluate(context.Background(), EvalParams{
		Graph:             g,
		Index:             idx,
		Start:             start,
		Drawing:           drawing,
		EffectiveTargetKM: 0.2,
		Angles:            []float64{0, 90},
		NPlacements:       4,
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if result == nil {
		t.Fatal("Evaluate returned nil result")
	}
	for i := 1; i < len(result.Routes); i++ {
		if result.Routes[i].SimilarityScore < result.Routes[i-1].SimilarityScore {
			t.Errorf("routes not sorted ascending by similarity: %v", result.Routes)
		}
	}
	for i, r := range result.Routes {
		if r.ID != i+1 {
			t.Errorf("route %d has ID %d, want %d", i, r.ID, i+1)
		}
	}
}

func TestEvaluateContextCancelled(t *testing.T) {
	g := buildGridGraph(t)
	idx := spatial.Build(g, 0.0005)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	drawing := []orb.Point{{0, 0}, {0.0007, 0}, {0.0014, 0.0007}}
	_, err := Evaluate(ctx, EvalParams{
		Graph:             g,
		Index:             idx,
		Start:             orb.Point{0, 0},
		Drawing:           drawing,
		EffectiveTargetKM: 0.2,
		Angles:            []float64{0},
		NPlacements:       4,
	})
	if err == nil {
		t.Error("expected context cancellation error")
	}
}

func TestRankTopThreeAndEmpty(t *testing.T) {
	candidates := []Candidate{
		{Angle: 10, SimilarityScore: 30},
		{Angle: 20, SimilarityScore: 10},
		{Angle: 30, SimilarityScore: 20},
		{Angle: 40, SimilarityScore: 40},
	}
	result := Rank(candidates)
	if len(result.Routes) != 3 {
		t.Fatalf("got %d routes, want 3", len(result.Routes))
	}
	if result.Routes[0].Angle != 20 || result.Routes[1].Angle != 30 || result.Routes[2].Angle != 10 {
		t.Errorf("unexpected rank order: %+v", result.Routes)
	}
	if result.BestAngle != 20 {
		t.Errorf("BestAngle = %f, want 20", result.BestAngle)
	}

	empty := Rank(nil)
	if len(empty.Routes) != 0 {
		t.Errorf("expected no routes for empty input, got %v", empty.Routes)
	}
}
