package picking

import (
	"testing"

	"github.com/Faultbox/midgard-geom/internal/engine/terrain"
	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/math"
)

func TestIntersectPlaneY(t *testing.T) {
	tests := []struct {
		name   string
		ray    Ray
		wantOK bool
		wantX  float32
		wantZ  float32
	}{
		{"down", NewRay(math.Vec3{X: 1, Y: 5, Z: 2}, math.Vec3{Y: -1}), true, 1, 2},
		{"diagonal", NewRay(math.Vec3{Y: 2}, math.Vec3{X: 1, Y: -1}), true, 2, 0},
		{"parallel", NewRay(math.Vec3{Y: 2}, math.Vec3{X: 1}), false, 0, 0},
		{"behind", NewRay(math.Vec3{Y: 2}, math.Vec3{Y: 1}), false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, z, ok := tt.ray.IntersectPlaneY(0)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (abs(x-tt.wantX) > 1e-5 || abs(z-tt.wantZ) > 1e-5) {
				t.Errorf("hit = (%v, %v), want (%v, %v)", x, z, tt.wantX, tt.wantZ)
			}
		})
	}
}

func TestIntersectAABB(t *testing.T) {
	box := AABB{Min: math.Vec3{X: -1, Y: -1, Z: -1}, Max: math.Vec3{X: 1, Y: 1, Z: 1}}

	tests := []struct {
		name    string
		ray     Ray
		wantHit bool
		wantT   float32
	}{
		{"outside", NewRay(math.Vec3{X: -5}, math.Vec3{X: 1}), true, 4},
		{"inside", NewRay(math.Vec3{}, math.Vec3{X: 1}), true, 1},
		{"miss", NewRay(math.Vec3{X: -5, Y: 3}, math.Vec3{X: 1}), false, 0},
		{"away", NewRay(math.Vec3{X: 5}, math.Vec3{X: 1}), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(box)
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if hit && abs(got-tt.wantT) > 1e-5 {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestIntersectTriangle(t *testing.T) {
	a := math.Vec3{}
	b := math.Vec3{X: 1}
	c := math.Vec3{Z: 1}

	got, hit := NewRay(math.Vec3{X: 0.25, Y: 2, Z: 0.25}, math.Vec3{Y: -1}).IntersectTriangle(a, b, c)
	if !hit || abs(got-2) > 1e-5 {
		t.Errorf("inside: t = %v, hit = %v", got, hit)
	}
	// Opposite winding
	if _, hit := NewRay(math.Vec3{X: 0.25, Y: -2, Z: 0.25}, math.Vec3{Y: 1}).IntersectTriangle(a, b, c); !hit {
		t.Error("back side should hit")
	}
	if _, hit := NewRay(math.Vec3{X: 0.75, Y: 2, Z: 0.75}, math.Vec3{Y: -1}).IntersectTriangle(a, b, c); hit {
		t.Error("point outside the triangle should miss")
	}
	if _, hit := NewRay(math.Vec3{X: 0.25, Y: 2}, math.Vec3{X: 1}).IntersectTriangle(a, b, c); hit {
		t.Error("parallel ray should miss")
	}
}

func TestPickFace(t *testing.T) {
	h := terrain.NewHeightfield(2, 2, 1)
	h.SetCornerHeight(2, 0, 1)
	m, err := terrain.BuildNavmesh(h)
	if err != nil {
		t.Fatal(err)
	}

	hit, ok, err := PickFace(m, NewRay(math.Vec3{X: 0.5, Y: 5, Z: 1.6}, math.Vec3{Y: -1}))
	if err != nil || !ok {
		t.Fatalf("pick: ok = %v, err = %v", ok, err)
	}
	if !hit.Point.ApproxEqual(math.Vec3{X: 0.5, Z: 1.6}, 1e-5) {
		t.Errorf("point = %v", hit.Point)
	}
	// Cell (0, 1), upper-left triangle
	if hit.Face.Index() != 4 {
		t.Errorf("face = %d, want 4", hit.Face.Index())
	}

	if _, ok, _ := PickFace(m, NewRay(math.Vec3{X: 5, Y: 5, Z: 5}, math.Vec3{Y: -1})); ok {
		t.Error("ray outside the mesh bounds should miss")
	}
}

func TestPickFace_MissingPositions(t *testing.T) {
	m := brep.New()
	if _, _, err := PickFace(m, NewRay(math.Vec3{}, math.Vec3{Y: -1})); err == nil {
		t.Error("expected error")
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
