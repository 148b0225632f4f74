package evaluate

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/paulmach/orb"

	"github.com/azybler/gpsart/pkg/astar"
	"github.com/azybler/gpsart/pkg/geo"
	"github.com/azybler/gpsart/pkg/graph"
	"github.com/azybler/gpsart/pkg/spatial"
	"github.com/azybler/gpsart/pkg/transform"
	"github.com/azybler/gpsart/pkg/waypoint"
)

// scaledFactor shrinks the effective target distance before route search,
// leaving room for the A*-stitched path (always at least as long as the
// straight figure) to land close to the true target.
const scaledFactor = 0.80

// defaultNPlacements is the number of candidate placement points sampled
// along the figure, and the number of waypoints requested per candidate.
const defaultNPlacements = 30

// Candidate is one placement+rotation+cyclic-start combination's resulting
// route.
type Candidate struct {
	ID              int
	Angle           float64
	DistanceM       float64
	Route           []orb.Point
	NodePath        []graph.NodeID
	SimilarityScore float64
	ScaledDrawing   []orb.Point
}

// Result is the outcome of a full candidate search.
type Result struct {
	Routes        []Candidate
	ScaledDrawing []orb.Point
	BestAngle     float64
}

// ProgressFunc reports search progress as a percent (0-100) and a short
// stage label.
type ProgressFunc func(percent int, stage string)

// EvalParams configures a candidate search.
type EvalParams struct {
	Graph             *graph.Graph
	Index             *spatial.Grid
	Start             orb.Point
	Drawing           []orb.Point // figure in geographic coordinates, unplaced
	EffectiveTargetKM float64
	Angles            []float64
	NPlacements       int // 0 means defaultNPlacements
	OnProgress        ProgressFunc
}

func (p EvalParams) nPlacements() int {
	if p.NPlacements <= 0 {
		return defaultNPlacements
	}
	return p.NPlacements
}

func (p EvalParams) report(percent int, stage string) {
	if p.OnProgress != nil {
		p.OnProgress(percent, stage)
	}
}

type placementTask struct {
	k     int
	angle float64
}

// Evaluate searches every (placement, rotation) combination for the
// best-scoring cyclic start, running the search across a bounded worker
// pool, and returns the top-3 candidates ranked by similarity score.
func Evaluate(ctx context.Context, p EvalParams) (*Result, error) {
	nPlacements := p.nPlacements()
	sampled := waypoint.SampleEvenly(p.Drawing, nPlacements)

	var tasks []placementTask
	for k := range sampled {
		for _, angle := range p.Angles {
			tasks = append(tasks, placementTask{k: k, angle: angle})
		}
	}

	maxWorkers := runtime.NumCPU()
	if len(tasks) < maxWorkers {
		maxWorkers = len(tasks)
	}
	if maxWorkers > 8 {
		maxWorkers = 8
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	p.report(15, "processing")

	taskCh := make(chan placementTask)
	resultCh := make(chan *Candidate, len(tasks))

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				resultCh <- runCandidate(p, sampled, task)
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for _, t := range tasks {
			select {
			case <-ctx.Done():
				return
			case taskCh <- t:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var candidates []Candidate
	done := 0
	lastReported := 15 // the "processing" report above
	for c := range resultCh {
		done++
		if c != nil {
			candidates = append(candidates, *c)
		}
		if len(tasks) > 0 {
			percent := 10 + int(70*float64(done)/float64(len(tasks)))
			if percent > 80 {
				percent = 80
			}
			if percent-lastReported >= 5 {
				lastReported = percent
				p.report(percent, "processing")
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.report(85, "processing")

	result := Rank(candidates)

	p.report(92, "processing")
	p.report(99, "processing")

	return result, nil
}

// runCandidate places the figure at placement k, rotates by angle, scales
// to the effective target distance, selects waypoints, then tries every
// cyclic start to find the lowest-similarity full path. It recovers from
// panics in a single worker's candidate so one bad candidate doesn't take
// down the whole search.
func runCandidate(p EvalParams, sampled []orb.Point, task placementTask) (result *Candidate) {
	defer func() {
		if recover() != nil {
			result = nil
		}
	}()

	pointAtK := sampled[task.k]
	placed := transform.Translate(p.Drawing, p.Start.X()-pointAtK.X(), p.Start.Y()-pointAtK.Y())
	rotated := transform.Rotate(placed, p.Start, task.angle)
	targetDistanceM := p.EffectiveTargetKM * 1000 * scaledFactor
	scaled := transform.Scale(rotated, p.Start, targetDistanceM)

	wpNodes := waypoint.Select(p.Graph, p.Index, p.Start, scaled, waypoint.SelectOptions{
		NSamples:          p.nPlacements(),
		UseSegmentNearest: true,
		UseDirection:      true,
	})
	if len(wpNodes) == 0 {
		return nil
	}

	bestSim := -1.0
	var bestPath []graph.NodeID
	var bestRoute []orb.Point

	for startIdx := range wpNodes {
		path, ok := astar.BuildFullPath(wpNodes, startIdx, p.Graph)
		if !ok {
			continue
		}
		route := nodePathToPoints(p.Graph, path)
		sim := Similarity(scaled, route)
		if bestSim < 0 || sim < bestSim {
			bestSim = sim
			bestPath = path
			bestRoute = route
		}
	}

	if bestPath == nil {
		return nil
	}

	return &Candidate{
		Angle:           task.angle,
		DistanceM:       geo.PathLength(bestRoute),
		Route:           bestRoute,
		NodePath:        bestPath,
		SimilarityScore: bestSim,
		ScaledDrawing:   scaled,
	}
}

func nodePathToPoints(g *graph.Graph, path []graph.NodeID) []orb.Point {
	points := make([]orb.Point, len(path))
	for i, n := range path {
		points[i] = g.Pos(n)
	}
	return points
}

// Rank sorts candidates ascending by similarity score (lower is better),
// keeps the top 3, assigns them ids 1..3, and derives the overall
// scaled-drawing/best-angle from the winner.
func Rank(candidates []Candidate) *Result {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].SimilarityScore < candidates[j].SimilarityScore
	})

	n := len(candidates)
	if n > 3 {
		n = 3
	}
	top := make([]Candidate, n)
	copy(top, candidates[:n])
	for i := range top {
		top[i].ID = i + 1
	}

	result := &Result{Routes: top}
	if len(top) > 0 {
		result.BestAngle = top[0].Angle
		result.ScaledDrawing = top[0].ScaledDrawing
	}
	return result
}
