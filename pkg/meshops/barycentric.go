package meshops

import (
	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/math"
)

var barycentricCorners = [3]math.Vec3{{X: 1}, {Y: 1}, {Z: 1}}

// GenerateLoopBarycentric assigns each loop the unit barycentric coordinate of its
// corner, cycling (1,0,0), (0,1,0), (0,0,1) around every face.
func GenerateLoopBarycentric(m *brep.Mesh) error {
	coords, err := brep.Ensure[math.Vec3](m.Loops().Attributes(), AttrBarycentric)
	if err != nil {
		return err
	}
	for _, f := range m.Faces().All() {
		i := 0
		for loop := range f.Loops().All() {
			coords.Set(loop.Index(), barycentricCorners[i%3])
			i++
		}
	}
	return nil
}
