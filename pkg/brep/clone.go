package brep

// Clone returns a deep copy of the mesh. Every element keeps its index and every link
// and attribute value is reproduced.
func (m *Mesh) Clone() *Mesh {
	c := New()

	vertices := make([]*Vertex, m.vertices.Len())
	for i := range vertices {
		v := &Vertex{mesh: c, index: i}
		v.edges.vertex = v
		vertices[i] = v
	}
	edges := make([]*Edge, m.edges.Len())
	for i, src := range m.edges.elements {
		edges[i] = &Edge{
			mesh:     c,
			index:    i,
			vertices: [2]*Vertex{vertices[src.vertices[0].index], vertices[src.vertices[1].index]},
		}
	}
	faces := make([]*Face, m.faces.Len())
	for i := range faces {
		faces[i] = &Face{mesh: c, index: i}
	}
	loops := make([]*Loop, m.loops.Len())
	for i, src := range m.loops.elements {
		loops[i] = &Loop{
			mesh:   c,
			index:  i,
			vertex: vertices[src.vertex.index],
			edge:   edges[src.edge.index],
			face:   faces[src.face.index],
		}
	}

	// Links are copied by index so list order matches the source exactly.
	for i, src := range m.vertices.elements {
		dst := vertices[i]
		dst.edges.size = src.edges.size
		if src.edges.head != nil {
			dst.edges.head = edges[src.edges.head.index]
		}
	}
	for i, src := range m.edges.elements {
		dst := edges[i]
		for s := 0; s < 2; s++ {
			dst.vertexNext[s] = edges[src.vertexNext[s].index]
			dst.vertexPrev[s] = edges[src.vertexPrev[s].index]
		}
		dst.loops.size = src.loops.size
		if src.loops.head != nil {
			dst.loops.head = loops[src.loops.head.index]
		}
	}
	for i, src := range m.loops.elements {
		dst := loops[i]
		dst.edgeNext = loops[src.edgeNext.index]
		dst.edgePrev = loops[src.edgePrev.index]
		dst.faceNext = loops[src.faceNext.index]
		dst.facePrev = loops[src.facePrev.index]
	}
	for i, src := range m.faces.elements {
		dst := faces[i]
		dst.loops.size = src.loops.size
		dst.loops.head = loops[src.loops.head.index]
	}

	c.vertices.elements = vertices
	c.edges.elements = edges
	c.loops.elements = loops
	c.faces.elements = faces

	c.vertices.attributes.cloneFrom(&m.vertices.attributes)
	c.edges.attributes.cloneFrom(&m.edges.attributes)
	c.loops.attributes.cloneFrom(&m.loops.attributes)
	c.faces.attributes.cloneFrom(&m.faces.attributes)

	return c
}
