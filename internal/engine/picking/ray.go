// Package picking provides ray casting against B-rep meshes.
package picking

import (
	gomath "math"

	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/math"
	"github.com/Faultbox/midgard-geom/pkg/meshops"
)

// rayEpsilon rejects rays nearly parallel to a triangle.
const rayEpsilon = 1e-7

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay creates a ray, normalizing dir.
func NewRay(origin, dir math.Vec3) Ray {
	return Ray{Origin: origin, Direction: dir.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// MeshBounds returns the box enclosing every vertex position.
func MeshBounds(positions []math.Vec3) AABB {
	if len(positions) == 0 {
		return AABB{}
	}
	box := AABB{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		box.Min = math.Vec3{X: min(box.Min.X, p.X), Y: min(box.Min.Y, p.Y), Z: min(box.Min.Z, p.Z)}
		box.Max = math.Vec3{X: max(box.Max.X, p.X), Y: max(box.Max.Y, p.Y), Z: max(box.Max.Z, p.Z)}
	}
	return box
}

// IntersectPlaneY intersects a ray with a horizontal plane at the given Y level.
// Returns the intersection point (X, Z) and whether the intersection is valid.
func (r Ray) IntersectPlaneY(planeY float32) (x, z float32, ok bool) {
	if gomath.Abs(float64(r.Direction.Y)) < 0.001 {
		return 0, 0, false // Ray parallel to plane
	}

	t := (planeY - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return 0, 0, false // Intersection behind ray origin
	}

	p := r.At(t)
	return p.X, p.Z, true
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for axis := range 3 {
		o := r.Origin.Component(axis)
		d := r.Direction.Component(axis)
		lo, hi := box.Min.Component(axis), box.Max.Component(axis)

		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle returns the distance along the ray to triangle abc. Both windings
// are hit.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t float32, hit bool) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	p := r.Direction.Cross(ac)
	det := ab.Dot(p)
	if det > -rayEpsilon && det < rayEpsilon {
		return 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(ab)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = ac.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Hit is the result of picking a mesh.
type Hit struct {
	Face     *brep.Face
	Point    math.Vec3
	Distance float32
}

// PickFace returns the nearest face hit by the ray. Faces are fan triangulated from
// their first loop. The mesh bounds are tested first.
func PickFace(m *brep.Mesh, r Ray) (Hit, bool, error) {
	positions, err := meshops.Positions(m)
	if err != nil {
		return Hit{}, false, err
	}
	if _, ok := r.IntersectAABB(MeshBounds(positions.Data())); !ok {
		return Hit{}, false, nil
	}

	var best Hit
	found := false
	for _, f := range m.Faces().All() {
		loops := f.Loops().Slice()
		a := positions.At(loops[0].Vertex().Index())
		for i := 1; i+1 < len(loops); i++ {
			b := positions.At(loops[i].Vertex().Index())
			c := positions.At(loops[i+1].Vertex().Index())
			t, ok := r.IntersectTriangle(a, b, c)
			if ok && (!found || t < best.Distance) {
				best = Hit{Face: f, Point: r.At(t), Distance: t}
				found = true
			}
		}
	}
	return best, found, nil
}
