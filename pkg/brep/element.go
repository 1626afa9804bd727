package brep

// Feature is a vertex, edge or face. It is implemented only by *Vertex, *Edge and
// *Face, so a type switch over the three covers every case.
type Feature interface {
	Index() int
	feature()
}

// Vertex is a point of the mesh. Coordinates live in vertex attributes.
type Vertex struct {
	mesh  *Mesh
	index int
	edges VertexEdgeList
}

// Index returns the vertex's current position in its container, or -1 once erased.
func (v *Vertex) Index() int { return v.index }

// Edges returns the circular list of edges incident to the vertex.
func (v *Vertex) Edges() *VertexEdgeList { return &v.edges }

func (v *Vertex) feature() {}

func (v *Vertex) setIndex(i int) { v.index = i }

// Edge is a segment bounded by two vertices.
type Edge struct {
	mesh     *Mesh
	index    int
	vertices [2]*Vertex

	// Links in the incident-edge list of vertices[i].
	vertexNext [2]*Edge
	vertexPrev [2]*Edge

	loops EdgeLoopList
}

// Index returns the edge's current position in its container, or -1 once erased.
func (e *Edge) Index() int { return e.index }

// Vertices returns the two bounding vertices in creation order.
func (e *Edge) Vertices() [2]*Vertex { return e.vertices }

// Other returns the endpoint opposite v, or nil if v does not bound the edge.
func (e *Edge) Other(v *Vertex) *Vertex {
	switch v {
	case e.vertices[0]:
		return e.vertices[1]
	case e.vertices[1]:
		return e.vertices[0]
	default:
		return nil
	}
}

// Connects reports whether the edge joins a and b in either order.
func (e *Edge) Connects(a, b *Vertex) bool {
	return (e.vertices[0] == a && e.vertices[1] == b) || (e.vertices[0] == b && e.vertices[1] == a)
}

// Loops returns the circular list of loops that traverse the edge.
func (e *Edge) Loops() *EdgeLoopList { return &e.loops }

// IsBoundary reports whether exactly one face uses the edge.
func (e *Edge) IsBoundary() bool { return e.loops.size == 1 }

func (e *Edge) feature() {}

func (e *Edge) setIndex(i int) { e.index = i }

// Loop is one directed use of an edge by a face.
type Loop struct {
	mesh   *Mesh
	index  int
	vertex *Vertex
	edge   *Edge
	face   *Face

	edgeNext *Loop
	edgePrev *Loop
	faceNext *Loop
	facePrev *Loop
}

// Index returns the loop's current position in its container, or -1 once erased.
func (l *Loop) Index() int { return l.index }

// Vertex returns the vertex at which the loop starts.
func (l *Loop) Vertex() *Vertex { return l.vertex }

// Destination returns the vertex at which the loop ends.
func (l *Loop) Destination() *Vertex { return l.edge.Other(l.vertex) }

// Edge returns the edge the loop traverses.
func (l *Loop) Edge() *Edge { return l.edge }

// Face returns the face the loop bounds.
func (l *Loop) Face() *Face { return l.face }

// Next returns the following loop in the face boundary.
func (l *Loop) Next() *Loop { return l.faceNext }

// Previous returns the preceding loop in the face boundary.
func (l *Loop) Previous() *Loop { return l.facePrev }

// EdgeNext returns the next loop sharing this loop's edge.
func (l *Loop) EdgeNext() *Loop { return l.edgeNext }

// EdgePrevious returns the previous loop sharing this loop's edge.
func (l *Loop) EdgePrevious() *Loop { return l.edgePrev }

func (l *Loop) setIndex(i int) { l.index = i }

// Face is a polygon bounded by a circular list of loops.
type Face struct {
	mesh  *Mesh
	index int
	loops FaceLoopList
}

// Index returns the face's current position in its container, or -1 once erased.
func (f *Face) Index() int { return f.index }

// Loops returns the boundary loops in traversal order.
func (f *Face) Loops() *FaceLoopList { return &f.loops }

// Vertices returns the boundary vertices in traversal order.
func (f *Face) Vertices() []*Vertex {
	vertices := make([]*Vertex, 0, f.loops.size)
	for l := range f.loops.All() {
		vertices = append(vertices, l.vertex)
	}
	return vertices
}

func (f *Face) feature() {}

func (f *Face) setIndex(i int) { f.index = i }
