package brep

import (
	"errors"
	"fmt"
	"iter"

	"go.uber.org/multierr"
)

// ErrInvalidMesh is wrapped by every violation reported from Validate.
var ErrInvalidMesh = errors.New("invalid mesh")

// Validate checks the structural invariants of the mesh: packed indices, symmetric
// adjacency, list closure and attribute lengths. All violations are returned combined;
// use multierr.Errors to split them.
func (m *Mesh) Validate() error {
	var err error
	fail := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidMesh}, args...)...))
	}

	for i, v := range m.vertices.elements {
		if v.index != i || v.mesh != m {
			fail("vertex at %d has index %d", i, v.index)
		}
		if v.edges.vertex != v {
			fail("vertex %d edge list has wrong owner", i)
		}
		for e := range v.edges.All() {
			if e.vertices[0] != v && e.vertices[1] != v {
				fail("vertex %d lists edge %d which does not touch it", i, e.index)
				break
			}
			next := e.vertexNext[v.edges.slot(e)]
			if next.vertexPrev[v.edges.slot(next)] != e {
				fail("vertex %d edge list broken at edge %d", i, e.index)
				break
			}
		}
	}

	for i, e := range m.edges.elements {
		if e.index != i || e.mesh != m {
			fail("edge at %d has index %d", i, e.index)
		}
		if e.vertices[0] == e.vertices[1] {
			fail("edge %d has equal endpoints", i)
		}
		for s, v := range e.vertices {
			if v == nil || v.mesh != m {
				fail("edge %d endpoint %d is not a vertex of this mesh", i, s)
				continue
			}
			if !containsEdge(&v.edges, e) {
				fail("edge %d missing from edge list of vertex %d", i, v.index)
			}
		}
		for loop := range e.loops.All() {
			if loop.edge != e {
				fail("edge %d lists loop %d of edge %d", i, loop.index, loop.edge.index)
			}
			if loop.edgeNext.edgePrev != loop {
				fail("edge %d loop list broken at loop %d", i, loop.index)
			}
		}
	}

	for i, l := range m.loops.elements {
		if l.index != i || l.mesh != m {
			fail("loop at %d has index %d", i, l.index)
		}
		if l.edge == nil || l.face == nil || l.vertex == nil {
			fail("loop %d has nil references", i)
			continue
		}
		if l.edge.vertices[0] != l.vertex && l.edge.vertices[1] != l.vertex {
			fail("loop %d starts at vertex %d which its edge %d does not touch", i, l.vertex.index, l.edge.index)
		}
		if l.faceNext.vertex != l.Destination() {
			fail("loop %d ends at vertex %d but the next loop starts at %d", i, l.Destination().index, l.faceNext.vertex.index)
		}
		if !containsLoop(l.edge.loops.All(), l) {
			fail("loop %d missing from loop list of edge %d", i, l.edge.index)
		}
		if !containsLoop(l.face.loops.All(), l) {
			fail("loop %d missing from loop list of face %d", i, l.face.index)
		}
	}

	for i, f := range m.faces.elements {
		if f.index != i || f.mesh != m {
			fail("face at %d has index %d", i, f.index)
		}
		if f.loops.size < 3 {
			fail("face %d has %d loops", i, f.loops.size)
		}
		for loop := range f.loops.All() {
			if loop.face != f {
				fail("face %d lists loop %d of face %d", i, loop.index, loop.face.index)
			}
			if loop.faceNext.facePrev != loop {
				fail("face %d loop list broken at loop %d", i, loop.index)
			}
		}
	}

	check := func(kind string, attrs *AttributeMap, n int) {
		attrs.Each(func(a Attribute) {
			if a.Len() != n {
				fail("%s attribute %q has %d values for %d elements", kind, a.Name(), a.Len(), n)
			}
		})
	}
	check("vertex", &m.vertices.attributes, m.vertices.Len())
	check("edge", &m.edges.attributes, m.edges.Len())
	check("loop", &m.loops.attributes, m.loops.Len())
	check("face", &m.faces.attributes, m.faces.Len())

	return err
}

func containsEdge(l *VertexEdgeList, e *Edge) bool {
	for x := range l.All() {
		if x == e {
			return true
		}
	}
	return false
}

func containsLoop(all iter.Seq[*Loop], loop *Loop) bool {
	for x := range all {
		if x == loop {
			return true
		}
	}
	return false
}
