// Package brep implements a boundary-representation mesh: vertices, edges, loops and
// faces connected through intrusive circular adjacency lists.
//
// A Mesh is not safe for concurrent mutation. Read-only queries may run concurrently
// with each other but never alongside a mutation.
//
// Passing an element that belongs to another mesh, or one that was already erased,
// is a caller bug; such calls panic with an error wrapping ErrForeignElement.
package brep

import (
	"errors"
	"fmt"
)

// Contract violations. Mesh methods panic with errors wrapping these.
var (
	ErrForeignElement = errors.New("element does not belong to this mesh")
	ErrDegenerateFace = errors.New("face needs at least 3 vertices")
	ErrDegenerateEdge = errors.New("edge endpoints must differ")
)

// Mesh owns the element containers and their attribute maps.
type Mesh struct {
	vertices VertexContainer
	edges    EdgeContainer
	loops    LoopContainer
	faces    FaceContainer
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// Vertices returns the vertex container.
func (m *Mesh) Vertices() *VertexContainer { return &m.vertices }

// Edges returns the edge container.
func (m *Mesh) Edges() *EdgeContainer { return &m.edges }

// Loops returns the loop container.
func (m *Mesh) Loops() *LoopContainer { return &m.loops }

// Faces returns the face container.
func (m *Mesh) Faces() *FaceContainer { return &m.faces }

// AppendVertex adds an isolated vertex.
func (m *Mesh) AppendVertex() *Vertex {
	v := &Vertex{mesh: m}
	v.edges.vertex = v
	return m.vertices.push(v)
}

// AppendEdge adds an edge between a and b and links it into both vertices' edge lists.
func (m *Mesh) AppendEdge(a, b *Vertex) *Edge {
	m.mustOwnVertex(a)
	m.mustOwnVertex(b)
	if a == b {
		panic(fmt.Errorf("%w: vertex %d", ErrDegenerateEdge, a.index))
	}
	return m.appendEdge(a, b)
}

func (m *Mesh) appendEdge(a, b *Vertex) *Edge {
	e := &Edge{mesh: m, vertices: [2]*Vertex{a, b}}
	a.edges.pushBack(e)
	b.edges.pushBack(e)
	return m.edges.push(e)
}

// FindEdge returns an edge joining a and b, or nil.
func (m *Mesh) FindEdge(a, b *Vertex) *Edge {
	m.mustOwnVertex(a)
	m.mustOwnVertex(b)
	return findEdge(a, b)
}

func findEdge(a, b *Vertex) *Edge {
	// Walk the shorter list
	if b.edges.size < a.edges.size {
		a, b = b, a
	}
	for e := range a.edges.All() {
		if e.Other(a) == b {
			return e
		}
	}
	return nil
}

// AppendFace adds a face bounded by the given vertices in order. Missing edges between
// consecutive vertices (including last to first) are created; existing edges gain an
// additional loop for the new face.
func (m *Mesh) AppendFace(vertices ...*Vertex) *Face {
	if len(vertices) < 3 {
		panic(fmt.Errorf("%w: got %d", ErrDegenerateFace, len(vertices)))
	}
	for i, v := range vertices {
		m.mustOwnVertex(v)
		if v == vertices[(i+1)%len(vertices)] {
			panic(fmt.Errorf("%w: vertex %d repeats at position %d", ErrDegenerateEdge, v.index, i))
		}
	}

	f := m.faces.push(&Face{mesh: m})

	for i, v := range vertices {
		next := vertices[(i+1)%len(vertices)]

		e := findEdge(v, next)
		if e == nil {
			e = m.appendEdge(v, next)
		}

		loop := m.loops.push(&Loop{mesh: m, vertex: v, edge: e, face: f})
		e.loops.pushBack(loop)
		f.loops.pushBack(loop)
	}

	return f
}

// EraseVertex removes a vertex together with its incident edges and every face that
// used those edges.
func (m *Mesh) EraseVertex(v *Vertex) {
	m.mustOwnVertex(v)
	for v.edges.head != nil {
		m.eraseEdge(v.edges.head)
	}
	m.vertices.remove(v)
	v.mesh = nil
}

// EraseEdge removes an edge and every face that used it.
func (m *Mesh) EraseEdge(e *Edge) {
	m.mustOwnEdge(e)
	m.eraseEdge(e)
}

func (m *Mesh) eraseEdge(e *Edge) {
	for e.loops.head != nil {
		m.eraseFace(e.loops.head.face)
	}
	e.vertices[0].edges.remove(e)
	e.vertices[1].edges.remove(e)
	m.edges.remove(e)
	e.mesh = nil
}

// EraseFace removes a face and its loops. Its vertices and edges are kept.
func (m *Mesh) EraseFace(f *Face) {
	m.mustOwnFace(f)
	m.eraseFace(f)
}

func (m *Mesh) eraseFace(f *Face) {
	for f.loops.head != nil {
		loop := f.loops.head
		loop.edge.loops.remove(loop)
		f.loops.remove(loop)
		m.loops.remove(loop)
		loop.mesh = nil
	}
	m.faces.remove(f)
	f.mesh = nil
}

// ReverseFace flips the winding of a face without rebuilding its topology.
func (m *Mesh) ReverseFace(f *Face) {
	m.mustOwnFace(f)
	f.loops.reverse()
}

// Clear erases every element. Attributes stay registered with zero length.
func (m *Mesh) Clear() {
	for m.vertices.Len() > 0 {
		m.EraseVertex(m.vertices.At(m.vertices.Len() - 1))
	}
}

// Owns reports whether the feature is a live element of this mesh.
func (m *Mesh) Owns(f Feature) bool {
	switch f := f.(type) {
	case *Vertex:
		return f != nil && f.mesh == m
	case *Edge:
		return f != nil && f.mesh == m
	case *Face:
		return f != nil && f.mesh == m
	default:
		return false
	}
}

func (m *Mesh) mustOwnVertex(v *Vertex) {
	if v == nil {
		panic(fmt.Errorf("%w: nil vertex", ErrForeignElement))
	}
	if v.mesh != m {
		panic(fmt.Errorf("%w: vertex #%d", ErrForeignElement, v.index))
	}
}

func (m *Mesh) mustOwnEdge(e *Edge) {
	if e == nil {
		panic(fmt.Errorf("%w: nil edge", ErrForeignElement))
	}
	if e.mesh != m {
		panic(fmt.Errorf("%w: edge #%d", ErrForeignElement, e.index))
	}
}

func (m *Mesh) mustOwnFace(f *Face) {
	if f == nil {
		panic(fmt.Errorf("%w: nil face", ErrForeignElement))
	}
	if f.mesh != m {
		panic(fmt.Errorf("%w: face #%d", ErrForeignElement, f.index))
	}
}

// MustOwn panics unless the feature is a live element of this mesh. Packages that
// build on the mesh use it to enforce the same ownership contract.
func (m *Mesh) MustOwn(f Feature) {
	switch f := f.(type) {
	case *Vertex:
		m.mustOwnVertex(f)
	case *Edge:
		m.mustOwnEdge(f)
	case *Face:
		m.mustOwnFace(f)
	default:
		panic(fmt.Errorf("%w: %T", ErrForeignElement, f))
	}
}
