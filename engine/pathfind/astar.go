package pathfind

import (
	"container/heap"

	"github.com/brackwater/colonysim/engine/hexgrid"
)

// FindPath searches the six-direction hex grid with A*, uniform move
// cost (1 per step) and the hex-distance heuristic, returning the
// tile sequence from start to goal inclusive, or nil if unreachable.
func FindPath(ng *NavGrid, start, goal hexgrid.Coord) []hexgrid.Coord {
	if !ng.Passable(goal) {
		return nil
	}
	if start == goal {
		return []hexgrid.Coord{start}
	}

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, &node{c: start, g: 0, f: hexgrid.Distance(start, goal)})

	came := make(map[hexgrid.Coord]hexgrid.Coord)
	gScore := map[hexgrid.Coord]float64{start: 0}
	closed := make(map[hexgrid.Coord]bool)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if closed[cur.c] {
			continue
		}
		closed[cur.c] = true

		if cur.c == goal {
			return reconstructPath(came, goal)
		}

		for _, n := range hexgrid.Neighbors(cur.c) {
			if !ng.Passable(n) {
				continue
			}
			tentG := gScore[cur.c] + 1
			if old, ok := gScore[n]; ok && tentG >= old {
				continue
			}
			gScore[n] = tentG
			came[n] = cur.c
			heap.Push(open, &node{c: n, g: tentG, f: tentG + hexgrid.Distance(n, goal)})
		}
	}
	return nil
}

func reconstructPath(came map[hexgrid.Coord]hexgrid.Coord, goal hexgrid.Coord) []hexgrid.Coord {
	path := []hexgrid.Coord{goal}
	cur := goal
	for {
		prev, ok := came[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type node struct {
	c    hexgrid.Coord
	g, f float64
}

type nodeHeap []*node

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) {
	*h = append(*h, x.(*node))
}
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ApproachTile returns the neighbor of target that minimizes hex
// distance to mover and is not occupied by a Building; units may
// occupy neighbors, resolved later by movement. Returns false if no
// such neighbor exists (target fully boxed in).
func ApproachTile(ng *NavGrid, target, mover hexgrid.Coord) (hexgrid.Coord, bool) {
	best := hexgrid.Coord{}
	bestDist := -1.0
	found := false
	for _, n := range hexgrid.Neighbors(target) {
		if !ng.Passable(n) {
			continue
		}
		d := hexgrid.Distance(n, mover)
		if !found || d < bestDist {
			best = n
			bestDist = d
			found = true
		}
	}
	return best, found
}
