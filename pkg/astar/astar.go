// Package astar finds shortest paths between graph nodes and stitches
// waypoint sequences into a single route.
package astar

import (
	"github.com/azybler/gpsart/pkg/geo"
	"github.com/azybler/gpsart/pkg/graph"
)

// MinHeap is a concrete-typed min-heap keyed on a float64 priority.
// Avoids interface boxing overhead of container/heap.
type MinHeap struct {
	items []PQItem
}

// PQItem is a priority queue entry.
type PQItem struct {
	Node     graph.NodeID
	Priority float64
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node graph.NodeID, priority float64) {
	h.items = append(h.items, PQItem{node, priority})
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Priority >= h.items[parent].Priority {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].Priority < h.items[smallest].Priority {
			smallest = left
		}
		if right < n && h.items[right].Priority < h.items[smallest].Priority {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// Run finds a shortest path from start to goal using A*, with edge length
// (meters) for g and haversine distance-to-goal for h — an admissible
// heuristic for meter-valued g, unlike the planar-degree g and h the Python
// reference uses.
func Run(g *graph.Graph, start, goal graph.NodeID) ([]graph.NodeID, bool) {
	if start == goal {
		return []graph.NodeID{start}, true
	}

	goalPos := g.Pos(goal)

	cameFrom := make(map[graph.NodeID]graph.NodeID)
	costSoFar := map[graph.NodeID]float64{start: 0}

	var frontier MinHeap
	frontier.Push(start, 0)

	for frontier.Len() > 0 {
		item := frontier.Pop()
		current := item.Node

		if current == goal {
			return reconstructPath(cameFrom, start, goal), true
		}

		// a stale heap entry: a cheaper path to current was already found.
		if item.Priority > costSoFar[current]+geo.HaversinePoints(g.Pos(current), goalPos)+1e-9 {
			continue
		}

		for _, edge := range g.Neighbors(current) {
			newCost := costSoFar[current] + edge.Length
			if existing, ok := costSoFar[edge.To]; !ok || newCost < existing {
				costSoFar[edge.To] = newCost
				heuristic := geo.HaversinePoints(g.Pos(edge.To), goalPos)
				frontier.Push(edge.To, newCost+heuristic)
				cameFrom[edge.To] = current
			}
		}
	}

	return nil, false
}

func reconstructPath(cameFrom map[graph.NodeID]graph.NodeID, start, goal graph.NodeID) []graph.NodeID {
	path := []graph.NodeID{goal}
	current := goal
	for current != start {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, prev)
		current = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// BuildFullPath cyclically shifts waypoints to start at startIdx, then
// stitches each consecutive pair together with Run, joining sub-paths
// without duplicating the shared node. It reports false if any leg has no
// path.
func BuildFullPath(waypoints []graph.NodeID, startIdx int, g *graph.Graph) ([]graph.NodeID, bool) {
	if len(waypoints) == 0 {
		return nil, false
	}

	n := len(waypoints)
	startIdx = ((startIdx % n) + n) % n
	sequence := make([]graph.NodeID, 0, n)
	sequence = append(sequence, waypoints[startIdx:]...)
	sequence = append(sequence, waypoints[:startIdx]...)

	var fullPath []graph.NodeID
	currentStart := sequence[0]
	for _, next := range sequence[1:] {
		subPath, ok := Run(g, currentStart, next)
		if !ok || len(subPath) == 0 {
			return nil, false
		}
		if len(fullPath) > 0 && fullPath[len(fullPath)-1] == subPath[0] {
			fullPath = append(fullPath, subPath[1:]...)
		} else {
			fullPath = append(fullPath, subPath...)
		}
		currentStart = next
	}

	return fullPath, true
}
