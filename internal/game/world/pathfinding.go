// Package world provides navigation over mesh-based game worlds.
package world

import (
	"container/heap"

	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/geom"
	"github.com/Faultbox/midgard-geom/pkg/math"
	"github.com/Faultbox/midgard-geom/pkg/meshops"
)

// PathNode represents a face in the A* search.
type PathNode struct {
	Face   *brep.Face
	G      float32 // Cost from start
	H      float32 // Heuristic (estimated cost to goal)
	F      float32 // Total cost (G + H)
	Parent *PathNode
	Index  int // Index in heap
}

// PathHeap implements a priority queue for A* pathfinding.
type PathHeap []*PathNode

func (h PathHeap) Len() int           { return len(h) }
func (h PathHeap) Less(i, j int) bool { return h[i].F < h[j].F }
func (h PathHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].Index = i
	h[j].Index = j
}

func (h *PathHeap) Push(x any) {
	node := x.(*PathNode)
	node.Index = len(*h)
	*h = append(*h, node)
}

func (h *PathHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*h = old[:n-1]
	return node
}

// PathFinder searches face paths across a navigation mesh. Face centroids are cached
// at construction, so the mesh must not be modified while the PathFinder is in use.
type PathFinder struct {
	mesh      *brep.Mesh
	positions *brep.TypedAttribute[math.Vec3]
	centroids []math.Vec3
}

// NewPathFinder creates a pathfinder for the mesh.
func NewPathFinder(m *brep.Mesh) (*PathFinder, error) {
	positions, err := meshops.Positions(m)
	if err != nil {
		return nil, err
	}

	centroids := make([]math.Vec3, m.Faces().Len())
	for i, f := range m.Faces().All() {
		var sum math.Vec3
		for loop := range f.Loops().All() {
			sum = sum.Add(positions.At(loop.Vertex().Index()))
		}
		centroids[i] = sum.Scale(1 / float32(f.Loops().Len()))
	}

	return &PathFinder{mesh: m, positions: positions, centroids: centroids}, nil
}

// Centroid returns the cached centroid of a face.
func (pf *PathFinder) Centroid(f *brep.Face) math.Vec3 {
	return pf.centroids[f.Index()]
}

// FindPath finds a face path from start to goal using A* over shared edges, with
// centroid distances as costs. Returns nil if no path exists.
func (pf *PathFinder) FindPath(start, goal *brep.Face) []*brep.Face {
	pf.mesh.MustOwn(start)
	pf.mesh.MustOwn(goal)

	openSet := &PathHeap{}
	heap.Init(openSet)

	closedSet := make(map[*brep.Face]bool)
	nodeMap := make(map[*brep.Face]*PathNode)

	startNode := &PathNode{Face: start, H: pf.heuristic(start, goal)}
	startNode.F = startNode.H
	heap.Push(openSet, startNode)
	nodeMap[start] = startNode

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*PathNode)

		if current.Face == goal {
			return reconstructPath(current)
		}
		closedSet[current.Face] = true

		for _, next := range Neighbors(current.Face) {
			if closedSet[next] {
				continue
			}

			g := current.G + pf.Centroid(current.Face).Distance(pf.Centroid(next))

			neighbor, exists := nodeMap[next]
			if !exists {
				neighbor = &PathNode{
					Face:   next,
					G:      g,
					H:      pf.heuristic(next, goal),
					Parent: current,
				}
				neighbor.F = neighbor.G + neighbor.H
				nodeMap[next] = neighbor
				heap.Push(openSet, neighbor)
			} else if g < neighbor.G {
				neighbor.G = g
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}

	return nil
}

// Neighbors returns the distinct faces sharing an edge with f, in boundary order.
func Neighbors(f *brep.Face) []*brep.Face {
	var out []*brep.Face
	seen := map[*brep.Face]bool{f: true}
	for loop := range f.Loops().All() {
		for other := range loop.Edge().Loops().All() {
			if g := other.Face(); !seen[g] {
				seen[g] = true
				out = append(out, g)
			}
		}
	}
	return out
}

// Portals returns the midpoint of the edge shared by each consecutive pair of faces
// in path.
func (pf *PathFinder) Portals(path []*brep.Face) []math.Vec3 {
	var portals []math.Vec3
	for i := 0; i+1 < len(path); i++ {
		e := sharedEdge(path[i], path[i+1])
		if e == nil {
			continue
		}
		ends := e.Vertices()
		a := pf.positions.At(ends[0].Index())
		b := pf.positions.At(ends[1].Index())
		portals = append(portals, a.Lerp(b, 0.5))
	}
	return portals
}

// Locate returns the face closest to p, treating faces as their first three corners.
func (pf *PathFinder) Locate(p math.Vec3) *brep.Face {
	var best *brep.Face
	bestDist := float32(0)
	for _, f := range pf.mesh.Faces().All() {
		loops := f.Loops()
		a := pf.positions.At(loops.At(0).Vertex().Index())
		b := pf.positions.At(loops.At(1).Vertex().Index())
		c := pf.positions.At(loops.At(2).Vertex().Index())
		q, _ := geom.ClosestPoint(a, b, c, p)
		if d := q.Sub(p).LengthSq(); best == nil || d < bestDist {
			best, bestDist = f, d
		}
	}
	return best
}

func sharedEdge(a, b *brep.Face) *brep.Edge {
	for loop := range a.Loops().All() {
		for other := range loop.Edge().Loops().All() {
			if other.Face() == b {
				return loop.Edge()
			}
		}
	}
	return nil
}

// heuristic is the straight-line distance between centroids.
func (pf *PathFinder) heuristic(from, to *brep.Face) float32 {
	return pf.Centroid(from).Distance(pf.Centroid(to))
}

func reconstructPath(node *PathNode) []*brep.Face {
	var path []*brep.Face
	for node != nil {
		path = append(path, node.Face)
		node = node.Parent
	}
	// Built from goal to start
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
