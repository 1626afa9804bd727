// Package geom provides triangle queries used by mesh operations and navmesh traversal.
package geom

import (
	"fmt"

	"github.com/Faultbox/midgard-geom/pkg/math"
)

// TriangleRegion classifies a point relative to a triangle ABC.
type TriangleRegion uint8

// Triangle regions. Edge regions are ordered AB, BC, CA so that the edge index
// matches the boundary loop that starts at the edge's first vertex.
const (
	RegionFace TriangleRegion = iota // Interior
	RegionAB
	RegionBC
	RegionCA
	RegionA
	RegionB
	RegionC
)

// String returns a human-readable region name.
func (r TriangleRegion) String() string {
	switch r {
	case RegionFace:
		return "abc"
	case RegionAB:
		return "ab"
	case RegionBC:
		return "bc"
	case RegionCA:
		return "ca"
	case RegionA:
		return "a"
	case RegionB:
		return "b"
	case RegionC:
		return "c"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(r))
	}
}

// IsFace returns true for the interior region.
func (r TriangleRegion) IsFace() bool {
	return r == RegionFace
}

// IsEdge returns true for the three edge regions.
func (r TriangleRegion) IsEdge() bool {
	return r >= RegionAB && r <= RegionCA
}

// IsVertex returns true for the three vertex regions.
func (r TriangleRegion) IsVertex() bool {
	return r >= RegionA && r <= RegionC
}

// EdgeIndex returns 0, 1 or 2 for AB, BC and CA. Only valid for edge regions.
func (r TriangleRegion) EdgeIndex() int {
	return int(r - RegionAB)
}

// VertexIndex returns 0, 1 or 2 for A, B and C. Only valid for vertex regions.
func (r TriangleRegion) VertexIndex() int {
	return int(r - RegionA)
}

// EdgeRegion returns the region of the edge starting at vertex i (0=AB, 1=BC, 2=CA).
func EdgeRegion(i int) TriangleRegion {
	return RegionAB + TriangleRegion(i%3)
}

// VertexRegion returns the region of vertex i (0=A, 1=B, 2=C).
func VertexRegion(i int) TriangleRegion {
	return RegionA + TriangleRegion(i%3)
}

// TriangleNormal returns the unit normal of ABC following its winding.
// Degenerate triangles return the zero vector.
func TriangleNormal(a, b, c math.Vec3) math.Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// Barycentric returns the barycentric coordinates (u, v, w) of p projected onto the
// plane of ABC, such that the projection equals a*u + b*v + c*w.
func Barycentric(p, a, b, c math.Vec3) math.Vec3 {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if denom == 0 {
		return math.Vec3{X: 1}
	}

	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return math.Vec3{X: 1 - v - w, Y: v, Z: w}
}

// Cartesian converts barycentric coordinates back to a point.
func Cartesian(bary, a, b, c math.Vec3) math.Vec3 {
	return a.Scale(bary.X).Add(b.Scale(bary.Y)).Add(c.Scale(bary.Z))
}

// Classify returns the region of a barycentric point. Coordinates within eps of zero
// count as lying on the corresponding edge. Points outside the triangle are classified
// by the coordinates that are not positive.
func Classify(bary math.Vec3, eps float32) TriangleRegion {
	var zero [3]bool
	count := 0
	for i := 0; i < 3; i++ {
		if bary.Component(i) <= eps {
			zero[i] = true
			count++
		}
	}

	switch count {
	case 0:
		return RegionFace
	case 1:
		// The edge opposite the vanishing coordinate
		switch {
		case zero[0]:
			return RegionBC
		case zero[1]:
			return RegionCA
		default:
			return RegionAB
		}
	default:
		// The vertex whose coordinate dominates
		best := 0
		for i := 1; i < 3; i++ {
			if bary.Component(i) > bary.Component(best) {
				best = i
			}
		}
		return VertexRegion(best)
	}
}

// ClosestPoint returns the point on triangle ABC closest to p and the Voronoi region
// it lies in.
func ClosestPoint(a, b, c, p math.Vec3) (math.Vec3, TriangleRegion) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)
	apDotAB := ap.Dot(ab)
	apDotAC := ap.Dot(ac)
	if apDotAB <= 0 && apDotAC <= 0 {
		return a, RegionA
	}

	bc := c.Sub(b)
	bp := p.Sub(b)
	bpDotBA := bp.Dot(a.Sub(b))
	bpDotBC := bp.Dot(bc)
	if bpDotBA <= 0 && bpDotBC <= 0 {
		return b, RegionB
	}

	cp := p.Sub(c)
	cpDotCA := cp.Dot(a.Sub(c))
	cpDotCB := cp.Dot(b.Sub(c))
	if cpDotCA <= 0 && cpDotCB <= 0 {
		return c, RegionC
	}

	n := ab.Cross(ac)
	pa := a.Sub(p)
	pb := b.Sub(p)
	vc := n.Dot(pa.Cross(pb))
	if vc <= 0 && apDotAB >= 0 && bpDotBA >= 0 {
		return a.Add(ab.Scale(apDotAB / (apDotAB + bpDotBA))), RegionAB
	}

	pc := c.Sub(p)
	va := n.Dot(pb.Cross(pc))
	if va <= 0 && bpDotBC >= 0 && cpDotCB >= 0 {
		return b.Add(bc.Scale(bpDotBC / (bpDotBC + cpDotCB))), RegionBC
	}

	vb := n.Dot(pc.Cross(pa))
	if vb <= 0 && apDotAC >= 0 && cpDotCA >= 0 {
		return a.Add(ac.Scale(apDotAC / (apDotAC + cpDotCA))), RegionCA
	}

	sum := va + vb + vc
	u := va / sum
	v := vb / sum
	w := 1 - u - v
	return a.Scale(u).Add(b.Scale(v)).Add(c.Scale(w)), RegionFace
}
