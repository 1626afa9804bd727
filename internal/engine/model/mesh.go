package model

import (
	"errors"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/math"
	"github.com/Faultbox/midgard-geom/pkg/meshops"
)

// AttrMaterial is the optional uint8 face attribute used for material grouping.
const AttrMaterial = "material"

var barycentricCorners = [3][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// BuildMesh creates a render mesh from a B-rep mesh. Every loop becomes one vertex;
// faces with more than three loops are fan triangulated.
//
// Normals come from the first attribute present among loop, vertex and face "normal".
// Without any of them the face plane normal is used. Loop "barycentric" is copied when
// present, otherwise corners cycle through the unit coordinates. A mesh without faces
// gives an empty Mesh.
func BuildMesh(m *brep.Mesh, opts BuildOptions) (*Mesh, error) {
	if m.Faces().Empty() {
		return &Mesh{}, nil
	}

	positions, err := meshops.Positions(m)
	if err != nil {
		return nil, err
	}
	loopNormals, err := optional[math.Vec3](m.Loops().Attributes(), meshops.AttrNormal)
	if err != nil {
		return nil, err
	}
	vertexNormals, err := optional[math.Vec3](m.Vertices().Attributes(), meshops.AttrNormal)
	if err != nil {
		return nil, err
	}
	faceNormals, err := optional[math.Vec3](m.Faces().Attributes(), meshops.AttrNormal)
	if err != nil {
		return nil, err
	}
	barycentric, err := optional[math.Vec3](m.Loops().Attributes(), meshops.AttrBarycentric)
	if err != nil {
		return nil, err
	}
	materials, err := optional[uint8](m.Faces().Attributes(), AttrMaterial)
	if err != nil {
		return nil, err
	}

	transform := mgl32.Ident4()
	if opts.Transform != nil {
		transform = *opts.Transform
	}
	normalMatrix := transform.Mat3().Inv().Transpose()

	vertices := make([]Vertex, 0, m.Loops().Len())
	groups := make(map[uint8][]uint32)

	bounds := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}

	for _, f := range m.Faces().All() {
		loops := f.Loops()
		base := uint32(len(vertices))

		a := positions.At(loops.At(0).Vertex().Index())
		b := positions.At(loops.At(1).Vertex().Index())
		c := positions.At(loops.At(2).Vertex().Index())
		planeNormal := b.Sub(a).Cross(c.Sub(a)).Normalize()

		corner := 0
		for loop := range loops.All() {
			v := loop.Vertex()

			normal := planeNormal
			switch {
			case loopNormals != nil:
				normal = loopNormals.At(loop.Index())
			case vertexNormals != nil:
				normal = vertexNormals.At(v.Index())
			case faceNormals != nil:
				normal = faceNormals.At(f.Index())
			}

			bary := barycentricCorners[corner%3]
			if barycentric != nil {
				bary = barycentric.At(loop.Index()).Array()
			}

			pos := mgl32.TransformCoordinate(positions.At(v.Index()).Mgl(), transform)
			n := normalMatrix.Mul3x1(normal.Mgl())
			if n.Len() > 1e-6 {
				n = n.Normalize()
			}

			p := [3]float32{pos.X(), pos.Y(), pos.Z()}
			updateBounds(&bounds, p)

			vertices = append(vertices, Vertex{
				Position:    p,
				Normal:      [3]float32{n.X(), n.Y(), n.Z()},
				Barycentric: bary,
			})
			corner++
		}

		var material uint8
		if materials != nil {
			material = materials.At(f.Index())
		}
		for i := uint32(1); i+1 < uint32(corner); i++ {
			if opts.ReverseWinding {
				groups[material] = append(groups[material], base, base+i+1, base+i)
			} else {
				groups[material] = append(groups[material], base, base+i, base+i+1)
			}
		}
	}

	keys := make([]int, 0, len(groups))
	for material := range groups {
		keys = append(keys, int(material))
	}
	sort.Ints(keys)

	var indices []uint32
	var out []MaterialGroup
	for _, k := range keys {
		idxs := groups[uint8(k)]
		out = append(out, MaterialGroup{
			Material:   uint8(k),
			StartIndex: int32(len(indices)),
			IndexCount: int32(len(idxs)),
		})
		indices = append(indices, idxs...)
	}

	if opts.SmoothNormals {
		SmoothNormals(vertices)
	}

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Groups:   out,
		Bounds:   bounds,
	}, nil
}

// optional looks up an attribute, returning nil without error when it is absent.
func optional[T any](attrs *brep.AttributeMap, name string) (*brep.TypedAttribute[T], error) {
	a, err := brep.Lookup[T](attrs, name)
	if errors.Is(err, brep.ErrAttributeNotFound) {
		return nil, nil
	}
	return a, err
}

// CenterMeshXZ centers the mesh horizontally (X/Z) but preserves Y offset.
// Returns the centering offset applied.
func CenterMeshXZ(mesh *Mesh) (centerX, centerZ float32) {
	center := mesh.Bounds.Center()
	centerX, centerZ = center[0], center[2]

	for i := range mesh.Vertices {
		mesh.Vertices[i].Position[0] -= centerX
		mesh.Vertices[i].Position[2] -= centerZ
	}

	mesh.Bounds.Min[0] -= centerX
	mesh.Bounds.Max[0] -= centerX
	mesh.Bounds.Min[2] -= centerZ
	mesh.Bounds.Max[2] -= centerZ

	return centerX, centerZ
}

// SmoothNormals averages normals at shared vertex positions.
func SmoothNormals(vertices []Vertex) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(vertices[i].Position[0] / epsilon),
			int32(vertices[i].Position[1] / epsilon),
			int32(vertices[i].Position[2] / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}

		var sum math.Vec3
		for _, idx := range idxs {
			n := vertices[idx].Normal
			sum = sum.Add(math.Vec3{X: n[0], Y: n[1], Z: n[2]})
		}
		avg := sum.Normalize().Array()

		for _, idx := range idxs {
			vertices[idx].Normal = avg
		}
	}
}

// CountTriangles returns the number of triangles BuildMesh produces for m.
func CountTriangles(m *brep.Mesh) int {
	total := 0
	for _, f := range m.Faces().All() {
		total += f.Loops().Len() - 2
	}
	return total
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
