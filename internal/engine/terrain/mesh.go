package terrain

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-geom/internal/logger"
	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/math"
	"github.com/Faultbox/midgard-geom/pkg/meshops"
)

// AttrCell is the int32 face attribute holding the source cell index (z*Width + x).
const AttrCell = "cell"

// BuildNavmesh creates a navigation mesh with two triangles per walkable cell.
// Neighbouring cells share corner vertices, so walkable regions are connected through
// shared edges. Corners used by no walkable cell are erased. Face normals are
// generated and point up.
func BuildNavmesh(h *Heightfield) (*brep.Mesh, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	m := brep.New()
	positions, err := brep.Emplace[math.Vec3](m.Vertices().Attributes(), meshops.AttrPosition)
	if err != nil {
		return nil, err
	}
	cells, err := brep.Emplace[int32](m.Faces().Attributes(), AttrCell)
	if err != nil {
		return nil, err
	}

	corners := make([]*brep.Vertex, (h.Width+1)*(h.Depth+1))
	for z := 0; z <= h.Depth; z++ {
		for x := 0; x <= h.Width; x++ {
			v := m.AppendVertex()
			positions.Set(v.Index(), math.Vec3{
				X: float32(x) * h.CellSize,
				Y: h.CornerHeight(x, z),
				Z: float32(z) * h.CellSize,
			})
			corners[z*(h.Width+1)+x] = v
		}
	}
	corner := func(x, z int) *brep.Vertex { return corners[z*(h.Width+1)+x] }

	for z := 0; z < h.Depth; z++ {
		for x := 0; x < h.Width; x++ {
			if !h.IsCellWalkable(x, z) {
				continue
			}
			c00, c10 := corner(x, z), corner(x+1, z)
			c01, c11 := corner(x, z+1), corner(x+1, z+1)

			// Counter-clockwise seen from above
			for _, f := range []*brep.Face{
				m.AppendFace(c00, c01, c11),
				m.AppendFace(c00, c11, c10),
			} {
				cells.Set(f.Index(), int32(z*h.Width+x))
			}
		}
	}

	unused := 0
	for _, v := range corners {
		if v.Edges().Empty() {
			m.EraseVertex(v)
			unused++
		}
	}

	if err := meshops.GenerateFaceNormals(m); err != nil {
		return nil, err
	}

	logger.Named("terrain").Debug("built navmesh",
		zap.Int("cells", h.Width*h.Depth),
		zap.Int("faces", m.Faces().Len()),
		zap.Int("vertices", m.Vertices().Len()),
		zap.Int("erased", unused))

	return m, nil
}
