// Package meshops derives per-element attributes from mesh geometry.
package meshops

import (
	"errors"

	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/geom"
	"github.com/Faultbox/midgard-geom/pkg/math"
)

// Standard attribute names.
const (
	AttrPosition    = "position"
	AttrNormal      = "normal"
	AttrBarycentric = "barycentric"
)

// Positions returns the vertex "position" attribute.
func Positions(m *brep.Mesh) (*brep.TypedAttribute[math.Vec3], error) {
	return brep.Lookup[math.Vec3](m.Vertices().Attributes(), AttrPosition)
}

// GenerateFaceNormals writes the unit normal of every face to the face "normal"
// attribute, creating it if needed. The normal is taken from the first three boundary
// vertices; a degenerate face gets the zero vector.
func GenerateFaceNormals(m *brep.Mesh) error {
	positions, err := Positions(m)
	if err != nil {
		return err
	}
	normals, err := brep.Ensure[math.Vec3](m.Faces().Attributes(), AttrNormal)
	if err != nil {
		return err
	}

	for i, f := range m.Faces().All() {
		loops := f.Loops()
		a := positions.At(loops.At(0).Vertex().Index())
		b := positions.At(loops.At(1).Vertex().Index())
		c := positions.At(loops.At(2).Vertex().Index())
		normals.Set(i, geom.TriangleNormal(a, b, c))
	}
	return nil
}

// GenerateVertexNormals writes the normalized average of the incident face normals to
// the vertex "normal" attribute. Existing face normals are used as they are; they are
// generated only when the face "normal" attribute is absent. Isolated vertices get the
// zero vector.
func GenerateVertexNormals(m *brep.Mesh) error {
	faceNormals, err := brep.Lookup[math.Vec3](m.Faces().Attributes(), AttrNormal)
	if errors.Is(err, brep.ErrAttributeNotFound) {
		if err := GenerateFaceNormals(m); err != nil {
			return err
		}
		faceNormals, err = brep.Lookup[math.Vec3](m.Faces().Attributes(), AttrNormal)
	}
	if err != nil {
		return err
	}
	normals, err := brep.Ensure[math.Vec3](m.Vertices().Attributes(), AttrNormal)
	if err != nil {
		return err
	}

	for i, v := range m.Vertices().All() {
		var sum math.Vec3
		for e := range v.Edges().All() {
			for loop := range e.Loops().All() {
				// Each incident face has exactly one loop starting at v
				if loop.Vertex() == v {
					sum = sum.Add(faceNormals.At(loop.Face().Index()))
				}
			}
		}
		normals.Set(i, sum.Normalize())
	}
	return nil
}
