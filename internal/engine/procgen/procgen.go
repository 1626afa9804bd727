// Package procgen generates navigation and test meshes from signed distance fields
// and triangle soups.
package procgen

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-geom/internal/logger"
	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/math"
	"github.com/Faultbox/midgard-geom/pkg/meshops"
)

// ErrInvalidSolid is returned for solids sdfx cannot build.
var ErrInvalidSolid = errors.New("invalid solid")

// Options controls tessellation.
type Options struct {
	Cells       int     // Marching cubes cells along the longest axis
	WeldEpsilon float32 // Corners closer than this share a vertex
}

// DefaultOptions returns the standard tessellation settings.
func DefaultOptions() Options {
	return Options{Cells: 32, WeldEpsilon: 1e-4}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Cells <= 0 {
		o.Cells = d.Cells
	}
	if o.WeldEpsilon <= 0 {
		o.WeldEpsilon = d.WeldEpsilon
	}
	return o
}

// Box tessellates an axis-aligned box with one corner at the origin.
func Box(x, y, z float64, opts Options) (*brep.Mesh, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: box: %v", ErrInvalidSolid, err)
	}
	// sdf.Box3D centers the box at the origin
	s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2}))
	return FromSDF(s, opts)
}

// Cylinder tessellates a cylinder centered at the origin along the Z axis.
func Cylinder(height, radius float64, opts Options) (*brep.Mesh, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: cylinder: %v", ErrInvalidSolid, err)
	}
	return FromSDF(s, opts)
}

// FromSDF tessellates a solid with uniform marching cubes and welds the triangles into
// a connected mesh with face normals.
func FromSDF(s sdf.SDF3, opts Options) (*brep.Mesh, error) {
	opts = opts.normalized()

	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(opts.Cells))

	soup := make([][3]math.Vec3, 0, len(triangles))
	for _, tri := range triangles {
		var t [3]math.Vec3
		for j := 0; j < 3; j++ {
			v := tri[j]
			t[j] = math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
		}
		soup = append(soup, t)
	}

	m := FromTriangles(soup, opts.WeldEpsilon)
	if err := meshops.GenerateFaceNormals(m); err != nil {
		return nil, err
	}

	logger.Named("procgen").Debug("tessellated solid",
		zap.Int("cells", opts.Cells),
		zap.Int("triangles", len(triangles)),
		zap.Int("faces", m.Faces().Len()),
		zap.Int("vertices", m.Vertices().Len()))

	return m, nil
}

// FromTriangles builds a mesh from a triangle soup. Corners that fall in the same
// weldEpsilon-sized cell share one vertex; triangles that collapse after welding are
// skipped. Vertex positions are stored in the "position" attribute.
func FromTriangles(tris [][3]math.Vec3, weldEpsilon float32) *brep.Mesh {
	if weldEpsilon <= 0 {
		weldEpsilon = DefaultOptions().WeldEpsilon
	}

	m := brep.New()
	positions, _ := brep.Emplace[math.Vec3](m.Vertices().Attributes(), meshops.AttrPosition)

	// Quantized position -> vertex
	welded := make(map[[3]int64]*brep.Vertex)
	vertexAt := func(p math.Vec3) *brep.Vertex {
		key := [3]int64{quantize(p.X, weldEpsilon), quantize(p.Y, weldEpsilon), quantize(p.Z, weldEpsilon)}
		if v, ok := welded[key]; ok {
			return v
		}
		v := m.AppendVertex()
		positions.Set(v.Index(), p)
		welded[key] = v
		return v
	}

	skipped := 0
	for _, t := range tris {
		a, b, c := vertexAt(t[0]), vertexAt(t[1]), vertexAt(t[2])
		if a == b || b == c || c == a {
			skipped++
			continue
		}
		m.AppendFace(a, b, c)
	}

	// Corners of skipped triangles may be unused
	for _, v := range m.Vertices().Slice() {
		if v.Edges().Empty() {
			m.EraseVertex(v)
		}
	}

	if skipped > 0 {
		logger.Named("procgen").Debug("skipped collapsed triangles", zap.Int("count", skipped))
	}
	return m
}

func quantize(x, eps float32) int64 {
	return int64(stdmath.Round(float64(x) / float64(eps)))
}
