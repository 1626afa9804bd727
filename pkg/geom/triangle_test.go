package geom

import (
	"testing"

	"github.com/Faultbox/midgard-geom/pkg/math"
)

var (
	triA = math.Vec3{X: 0, Y: 0, Z: 0}
	triB = math.Vec3{X: 1, Y: 0, Z: 0}
	triC = math.Vec3{X: 0, Y: 1, Z: 0}
)

func TestBarycentricCartesian(t *testing.T) {
	points := []math.Vec3{
		{X: 0.2, Y: 0.2},
		{X: 0.5, Y: 0.5},
		{X: 2, Y: 2},
		{X: -1, Y: 0.25},
	}

	for _, p := range points {
		bary := Barycentric(p, triA, triB, triC)
		sum := bary.X + bary.Y + bary.Z
		if sum < 0.9999 || sum > 1.0001 {
			t.Errorf("Barycentric(%v) sums to %v, want 1", p, sum)
		}
		back := Cartesian(bary, triA, triB, triC)
		if !back.ApproxEqual(p, 0.0001) {
			t.Errorf("Cartesian(Barycentric(%v)) = %v", p, back)
		}
	}
}

func TestBarycentricProjectsOffPlanePoints(t *testing.T) {
	bary := Barycentric(math.Vec3{X: 0.25, Y: 0.25, Z: 5}, triA, triB, triC)
	want := math.Vec3{X: 0.5, Y: 0.25, Z: 0.25}
	if !bary.ApproxEqual(want, 0.0001) {
		t.Errorf("Barycentric of off-plane point = %v, want %v", bary, want)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		bary math.Vec3
		want TriangleRegion
	}{
		{math.Vec3{X: 0.6, Y: 0.2, Z: 0.2}, RegionFace},
		{math.Vec3{X: 0, Y: 0.5, Z: 0.5}, RegionBC},
		{math.Vec3{X: 0.5, Y: 0, Z: 0.5}, RegionCA},
		{math.Vec3{X: 0.5, Y: 0.5, Z: 0}, RegionAB},
		{math.Vec3{X: 1, Y: 0, Z: 0}, RegionA},
		{math.Vec3{X: 0, Y: 1, Z: 0}, RegionB},
		{math.Vec3{X: 0, Y: 0, Z: 1}, RegionC},
		{math.Vec3{X: 0.5, Y: 0.5, Z: 1e-7}, RegionAB},
	}

	for _, tt := range tests {
		if got := Classify(tt.bary, 1e-5); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.bary, got, tt.want)
		}
	}
}

func TestClosestPoint(t *testing.T) {
	tests := []struct {
		name       string
		p          math.Vec3
		wantPoint  math.Vec3
		wantRegion TriangleRegion
	}{
		{"inside", math.Vec3{X: 0.2, Y: 0.2}, math.Vec3{X: 0.2, Y: 0.2}, RegionFace},
		{"above interior", math.Vec3{X: 0.2, Y: 0.2, Z: 3}, math.Vec3{X: 0.2, Y: 0.2}, RegionFace},
		{"beyond hypotenuse", math.Vec3{X: 2, Y: 2}, math.Vec3{X: 0.5, Y: 0.5}, RegionBC},
		{"below ab", math.Vec3{X: 0.5, Y: -1}, math.Vec3{X: 0.5}, RegionAB},
		{"left of ca", math.Vec3{X: -1, Y: 0.5}, math.Vec3{Y: 0.5}, RegionCA},
		{"past a", math.Vec3{X: -1, Y: -1}, triA, RegionA},
		{"past b", math.Vec3{X: 3, Y: -1}, triB, RegionB},
		{"past c", math.Vec3{X: -1, Y: 3}, triC, RegionC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, region := ClosestPoint(triA, triB, triC, tt.p)
			if region != tt.wantRegion {
				t.Errorf("region = %s, want %s", region, tt.wantRegion)
			}
			if !point.ApproxEqual(tt.wantPoint, 0.0001) {
				t.Errorf("point = %v, want %v", point, tt.wantPoint)
			}
		})
	}
}

func TestRegionIndices(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := EdgeRegion(i).EdgeIndex(); got != i {
			t.Errorf("EdgeRegion(%d).EdgeIndex() = %d", i, got)
		}
		if got := VertexRegion(i).VertexIndex(); got != i {
			t.Errorf("VertexRegion(%d).VertexIndex() = %d", i, got)
		}
		if !EdgeRegion(i).IsEdge() || EdgeRegion(i).IsVertex() || EdgeRegion(i).IsFace() {
			t.Errorf("EdgeRegion(%d) predicates wrong", i)
		}
		if !VertexRegion(i).IsVertex() || VertexRegion(i).IsEdge() {
			t.Errorf("VertexRegion(%d) predicates wrong", i)
		}
	}
	if !RegionFace.IsFace() {
		t.Error("RegionFace.IsFace() = false")
	}
}

func TestTriangleNormal(t *testing.T) {
	n := TriangleNormal(triA, triB, triC)
	if !n.ApproxEqual(math.Vec3{Z: 1}, 0.0001) {
		t.Errorf("TriangleNormal = %v, want +Z", n)
	}
	if d := TriangleNormal(triA, triB, triB); d != (math.Vec3{}) {
		t.Errorf("degenerate normal = %v, want zero", d)
	}
}
