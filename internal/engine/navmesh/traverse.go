// Package navmesh moves points across the faces of a B-rep mesh used as a navigation
// surface.
//
// Traverse walks a straight path over the surface, crossing shared edges into
// neighbouring faces and unfolding the remaining path about each crossed edge so it
// keeps following the surface. Faces are walked as triangles through their first
// three loops.
package navmesh

import (
	stdmath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-geom/internal/logger"
	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/geom"
	"github.com/Faultbox/midgard-geom/pkg/math"
	"github.com/Faultbox/midgard-geom/pkg/meshops"
)

// DefaultEpsilon is the barycentric tolerance used when Options.Epsilon is zero.
const DefaultEpsilon = 1e-5

// Options tunes a traversal.
type Options struct {
	// MaxSteps bounds the number of edge crossings. Zero means face count + 1.
	MaxSteps int
	// Epsilon is the barycentric tolerance for region and tie detection.
	Epsilon float32
}

// Result describes where a traversal ended.
type Result struct {
	// Feature is the vertex, edge or face containing the final position.
	Feature brep.Feature
	// Face is the face the traversal ended on.
	Face *brep.Face
	// Barycentric is the final position relative to Face's first three vertices.
	Barycentric math.Vec3
	// TargetPoint is the target as requested.
	TargetPoint math.Vec3
	// UnfoldedTarget is the target after unfolding the path into Face's plane.
	UnfoldedTarget math.Vec3
	// ClosestPoint is the final position.
	ClosestPoint math.Vec3
	Region       geom.TriangleRegion
	// Steps is the number of edges crossed.
	Steps int
	// Capped is set when the walk stopped at MaxSteps before reaching the target.
	Capped bool
}

type triangle struct {
	face  *brep.Face
	loops [3]*brep.Loop
	pos   [3]math.Vec3
}

func (t *triangle) barycentric(p math.Vec3) math.Vec3 {
	return geom.Barycentric(p, t.pos[0], t.pos[1], t.pos[2])
}

func (t *triangle) cartesian(bary math.Vec3) math.Vec3 {
	return geom.Cartesian(bary, t.pos[0], t.pos[1], t.pos[2])
}

// Loop whose edge lies opposite barycentric coordinate i.
func (t *triangle) oppositeLoop(i int) *brep.Loop {
	return t.loops[(i+1)%3]
}

// Opposite vertex position of the loop's edge.
func (t *triangle) apex(loop *brep.Loop) (math.Vec3, bool) {
	for i, l := range t.loops {
		if l == loop {
			return t.pos[(i+2)%3], true
		}
	}
	return math.Vec3{}, false
}

type walker struct {
	positions *brep.TypedAttribute[math.Vec3]
	eps       float32
}

func (w *walker) triangle(f *brep.Face) triangle {
	t := triangle{face: f}
	loops := f.Loops()
	for i := range t.loops {
		t.loops[i] = loops.At(i)
		t.pos[i] = w.positions.At(t.loops[i].Vertex().Index())
	}
	return t
}

// Traverse moves from start on face toward target along the surface.
//
// start is clamped onto face before walking. The walk stops when the target lies in
// the current face, when the path leaves the mesh through a boundary edge or vertex,
// or after MaxSteps crossings. It fails only if the vertex "position" attribute is
// missing or not math.Vec3. face must belong to m.
func Traverse(m *brep.Mesh, face *brep.Face, start, target math.Vec3, opts Options) (Result, error) {
	m.MustOwn(face)

	positions, err := meshops.Positions(m)
	if err != nil {
		return Result{}, err
	}

	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = m.Faces().Len() + 1
	}
	w := &walker{positions: positions, eps: opts.Epsilon}
	if w.eps <= 0 {
		w.eps = DefaultEpsilon
	}

	tri := w.triangle(face)
	p, _ := geom.ClosestPoint(tri.pos[0], tri.pos[1], tri.pos[2], start)
	q := target

	var (
		prevEdge *brep.Edge
		steps    int
		capped   bool
	)

	for {
		bp := tri.barycentric(p)
		bq := tri.barycentric(q)

		exit, tExit, corner := w.exit(bp, bq)
		if exit < 0 {
			p = tri.cartesian(bq)
			break
		}
		// Exit point and remaining path are taken in the face's plane so the walk
		// stays on the surface when neighbouring faces are not coplanar.
		x := tri.cartesian(bp.Lerp(bq, tExit))

		var edge *brep.Edge
		if corner >= 0 {
			edge = w.cornerEdge(&tri, corner, q.Sub(p))
		} else {
			edge = tri.oppositeLoop(exit).Edge()
		}

		if edge == nil || edge.IsBoundary() || edge == prevEdge {
			p = x
			break
		}
		if steps >= maxSteps {
			p = x
			capped = true
			logger.Named("navmesh").Debug("traversal capped",
				zap.Int("steps", steps),
				zap.Int("face", tri.face.Index()),
				zap.Int("max_steps", maxSteps))
			break
		}

		next, rot, ok := w.cross(&tri, edge)
		if !ok {
			p = x
			break
		}

		q = x.Add(rot.Rotate(tri.cartesian(bq).Sub(x)))
		p = x
		tri = next
		prevEdge = edge
		steps++
	}

	closest, _ := geom.ClosestPoint(tri.pos[0], tri.pos[1], tri.pos[2], p)
	bary := tri.barycentric(closest)
	region := geom.Classify(bary, w.eps)

	return Result{
		Feature:        featureOf(&tri, region),
		Face:           tri.face,
		Barycentric:    bary,
		TargetPoint:    target,
		UnfoldedTarget: q,
		ClosestPoint:   closest,
		Region:         region,
		Steps:          steps,
		Capped:         capped,
	}, nil
}

// exit finds where the segment from bp to bq leaves the triangle. It returns the
// barycentric coordinate that reaches zero first and the path parameter at that point,
// or exit -1 when bq lies inside. corner is the vertex index when two coordinates reach
// zero together, otherwise -1.
func (w *walker) exit(bp, bq math.Vec3) (exit int, t float32, corner int) {
	exit, corner = -1, -1
	t = float32(stdmath.Inf(1))

	var ts [3]float32
	for i := 0; i < 3; i++ {
		ts[i] = float32(stdmath.Inf(1))
		qi := bq.Component(i)
		if qi >= -w.eps {
			continue
		}
		pi := max(bp.Component(i), 0)
		ts[i] = pi / (pi - qi)
		if ts[i] < t {
			t = ts[i]
			exit = i
		}
	}
	if exit < 0 {
		return -1, 0, -1
	}

	for j := 0; j < 3; j++ {
		if j != exit && abs(ts[j]-t) <= w.eps {
			corner = 3 - exit - j
			break
		}
	}
	return exit, t, corner
}

// cornerEdge picks the edge to cross when the path leaves through a triangle vertex.
// Boundary edges are avoided; between two interior edges the one more perpendicular
// to the path wins. It returns nil when both edges are boundaries.
func (w *walker) cornerEdge(tri *triangle, corner int, dir math.Vec3) *brep.Edge {
	// Loops leaving and entering the corner vertex
	out := tri.loops[corner]
	in := tri.loops[(corner+2)%3]

	a, b := out.Edge(), in.Edge()
	switch {
	case a.IsBoundary() && b.IsBoundary():
		return nil
	case a.IsBoundary():
		return b
	case b.IsBoundary():
		return a
	}

	d := dir.Normalize()
	v := tri.pos[corner]
	da := abs(d.Dot(tri.pos[(corner+1)%3].Sub(v).Normalize()))
	db := abs(d.Dot(tri.pos[(corner+2)%3].Sub(v).Normalize()))
	if db < da {
		return b
	}
	return a
}

// cross finds the face on the other side of edge and the rotation that unfolds the
// current face's plane onto it about the edge.
func (w *walker) cross(tri *triangle, edge *brep.Edge) (triangle, math.Quat, bool) {
	var from *brep.Loop
	for _, l := range tri.loops {
		if l.Edge() == edge {
			from = l
			break
		}
	}
	if from == nil {
		return triangle{}, math.Quat{}, false
	}

	var to *brep.Loop
	for l := range edge.Loops().All() {
		if l.Face() != tri.face {
			to = l
			break
		}
	}
	if to == nil {
		return triangle{}, math.Quat{}, false
	}

	next := w.triangle(to.Face())
	apexG, ok := next.apex(to)
	if !ok {
		// Edge is not among the neighbour's first three loops
		return triangle{}, math.Quat{}, false
	}
	apexF, _ := tri.apex(from)

	ends := edge.Vertices()
	e0 := w.positions.At(ends[0].Index())
	e1 := w.positions.At(ends[1].Index())
	axis := e1.Sub(e0).Normalize()

	outward := perpendicular(apexF.Sub(e0), axis).Neg()
	inward := perpendicular(apexG.Sub(e0), axis)

	var rot math.Quat
	if outward.Dot(inward) < -1+w.eps {
		rot = math.QuatFromAxisAngle(axis, stdmath.Pi)
	} else {
		rot = math.QuatBetween(outward, inward)
	}
	return next, rot, true
}

// perpendicular returns the unit component of v orthogonal to the unit axis.
func perpendicular(v, axis math.Vec3) math.Vec3 {
	return v.Sub(axis.Scale(v.Dot(axis))).Normalize()
}

func featureOf(tri *triangle, region geom.TriangleRegion) brep.Feature {
	switch {
	case region.IsVertex():
		return tri.loops[region.VertexIndex()].Vertex()
	case region.IsEdge():
		return tri.loops[region.EdgeIndex()].Edge()
	default:
		return tri.face
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
