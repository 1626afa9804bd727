package world

import (
	"testing"

	"github.com/Faultbox/midgard-geom/internal/engine/terrain"
	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/math"
)

// gridMesh builds a terrain navmesh of width x depth unit cells.
func gridMesh(t *testing.T, width, depth int, blocked [][2]int) *brep.Mesh {
	t.Helper()
	h := terrain.NewHeightfield(width, depth, 1)
	for _, b := range blocked {
		h.SetBlocked(b[0], b[1], true)
	}
	m, err := terrain.BuildNavmesh(h)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestPathFinder_FindPath_Simple(t *testing.T) {
	m := gridMesh(t, 5, 5, nil)
	pf, err := NewPathFinder(m)
	if err != nil {
		t.Fatal(err)
	}

	start := pf.Locate(math.Vec3{X: 0.2, Z: 0.5})
	goal := pf.Locate(math.Vec3{X: 4.8, Z: 4.5})

	path := pf.FindPath(start, goal)
	if path == nil {
		t.Fatal("expected path, got nil")
	}
	if path[0] != start || path[len(path)-1] != goal {
		t.Error("path should run from start to goal")
	}

	for i := 0; i+1 < len(path); i++ {
		if sharedEdge(path[i], path[i+1]) == nil {
			t.Errorf("faces %d and %d in path are not adjacent", path[i].Index(), path[i+1].Index())
		}
	}
}

func TestPathFinder_FindPath_WithObstacle(t *testing.T) {
	// Wall at x=2 with a gap at z=4
	blocked := [][2]int{{2, 0}, {2, 1}, {2, 2}, {2, 3}}
	m := gridMesh(t, 5, 5, blocked)
	pf, _ := NewPathFinder(m)

	start := pf.Locate(math.Vec3{X: 0.5, Z: 0.5})
	goal := pf.Locate(math.Vec3{X: 4.5, Z: 0.5})

	path := pf.FindPath(start, goal)
	if path == nil {
		t.Fatal("expected path around the wall")
	}

	// Must detour through the gap row
	throughGap := false
	for _, f := range path {
		if pf.Centroid(f).Z > 4 {
			throughGap = true
		}
		if c := pf.Centroid(f); c.X > 2 && c.X < 3 && c.Z < 4 {
			t.Errorf("path crosses blocked cell at %v", c)
		}
	}
	if !throughGap {
		t.Error("path should pass through the gap")
	}
}

func TestPathFinder_FindPath_NoPath(t *testing.T) {
	blocked := [][2]int{{2, 0}, {2, 1}, {2, 2}}
	m := gridMesh(t, 5, 3, blocked)
	pf, _ := NewPathFinder(m)

	start := pf.Locate(math.Vec3{X: 0.5, Z: 0.5})
	goal := pf.Locate(math.Vec3{X: 4.5, Z: 0.5})

	if path := pf.FindPath(start, goal); path != nil {
		t.Errorf("expected no path, got %d faces", len(path))
	}
}

func TestPathFinder_SameFace(t *testing.T) {
	m := gridMesh(t, 2, 2, nil)
	pf, _ := NewPathFinder(m)
	f := m.Faces().At(0)

	path := pf.FindPath(f, f)
	if len(path) != 1 || path[0] != f {
		t.Errorf("path = %v, want the single start face", path)
	}
	if portals := pf.Portals(path); len(portals) != 0 {
		t.Errorf("portals = %v, want none", portals)
	}
}

func TestPortals(t *testing.T) {
	m := gridMesh(t, 1, 1, nil)
	pf, _ := NewPathFinder(m)

	path := []*brep.Face{m.Faces().At(0), m.Faces().At(1)}
	portals := pf.Portals(path)
	if len(portals) != 1 {
		t.Fatalf("portals = %d, want 1", len(portals))
	}
	// Cell diagonal midpoint
	if !portals[0].ApproxEqual(math.Vec3{X: 0.5, Z: 0.5}, 1e-6) {
		t.Errorf("portal = %v", portals[0])
	}
}

func TestNeighbors(t *testing.T) {
	m := gridMesh(t, 3, 3, nil)
	pf, _ := NewPathFinder(m)

	// Interior triangles of a grid touch exactly three others
	f := pf.Locate(math.Vec3{X: 1.2, Z: 1.8})
	if n := len(Neighbors(f)); n != 3 {
		t.Errorf("neighbors = %d, want 3", n)
	}
}
