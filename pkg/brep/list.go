package brep

import "iter"

// VertexEdgeList is the circular list of edges incident to one vertex. Each edge keeps
// one pair of links per endpoint; the slot belonging to this list is the endpoint that
// equals the owning vertex.
type VertexEdgeList struct {
	vertex *Vertex
	head   *Edge
	size   int
}

// Len returns the number of edges in the list.
func (l *VertexEdgeList) Len() int { return l.size }

// Empty reports whether the list has no edges.
func (l *VertexEdgeList) Empty() bool { return l.size == 0 }

// Front returns the head edge, or nil.
func (l *VertexEdgeList) Front() *Edge { return l.head }

// Back returns the last edge, or nil.
func (l *VertexEdgeList) Back() *Edge {
	if l.head == nil {
		return nil
	}
	return l.head.vertexPrev[l.slot(l.head)]
}

// All iterates the edges starting at the head.
func (l *VertexEdgeList) All() iter.Seq[*Edge] {
	return func(yield func(*Edge) bool) {
		e := l.head
		for n := 0; n < l.size; n++ {
			if !yield(e) {
				return
			}
			e = e.vertexNext[l.slot(e)]
		}
	}
}

// Slice returns the edges in list order.
func (l *VertexEdgeList) Slice() []*Edge {
	edges := make([]*Edge, 0, l.size)
	for e := range l.All() {
		edges = append(edges, e)
	}
	return edges
}

func (l *VertexEdgeList) slot(e *Edge) int {
	if e.vertices[1] == l.vertex {
		return 1
	}
	return 0
}

func (l *VertexEdgeList) pushBack(e *Edge) {
	i := l.slot(e)
	if l.head == nil {
		e.vertexNext[i] = e
		e.vertexPrev[i] = e
		l.head = e
	} else {
		head := l.head
		hi := l.slot(head)
		tail := head.vertexPrev[hi]
		ti := l.slot(tail)

		e.vertexNext[i] = head
		e.vertexPrev[i] = tail
		tail.vertexNext[ti] = e
		head.vertexPrev[hi] = e
	}
	l.size++
}

func (l *VertexEdgeList) remove(e *Edge) {
	i := l.slot(e)
	next := e.vertexNext[i]
	prev := e.vertexPrev[i]

	if next == e {
		l.head = nil
	} else {
		next.vertexPrev[l.slot(next)] = prev
		prev.vertexNext[l.slot(prev)] = next
		if l.head == e {
			l.head = next
		}
	}

	e.vertexNext[i] = nil
	e.vertexPrev[i] = nil
	l.size--
}

// EdgeLoopList is the circular list of loops that traverse one edge, in no
// particular order.
type EdgeLoopList struct {
	head *Loop
	size int
}

// Len returns the number of loops in the list.
func (l *EdgeLoopList) Len() int { return l.size }

// Empty reports whether the list has no loops.
func (l *EdgeLoopList) Empty() bool { return l.size == 0 }

// Front returns the head loop, or nil.
func (l *EdgeLoopList) Front() *Loop { return l.head }

// Back returns the last loop, or nil.
func (l *EdgeLoopList) Back() *Loop {
	if l.head == nil {
		return nil
	}
	return l.head.edgePrev
}

// All iterates the loops starting at the head.
func (l *EdgeLoopList) All() iter.Seq[*Loop] {
	return func(yield func(*Loop) bool) {
		loop := l.head
		for n := 0; n < l.size; n++ {
			if !yield(loop) {
				return
			}
			loop = loop.edgeNext
		}
	}
}

// Slice returns the loops in list order.
func (l *EdgeLoopList) Slice() []*Loop {
	loops := make([]*Loop, 0, l.size)
	for loop := range l.All() {
		loops = append(loops, loop)
	}
	return loops
}

func (l *EdgeLoopList) pushBack(loop *Loop) {
	if l.head == nil {
		loop.edgeNext = loop
		loop.edgePrev = loop
		l.head = loop
	} else {
		tail := l.head.edgePrev
		loop.edgeNext = l.head
		loop.edgePrev = tail
		tail.edgeNext = loop
		l.head.edgePrev = loop
	}
	l.size++
}

func (l *EdgeLoopList) remove(loop *Loop) {
	if loop.edgeNext == loop {
		l.head = nil
	} else {
		loop.edgeNext.edgePrev = loop.edgePrev
		loop.edgePrev.edgeNext = loop.edgeNext
		if l.head == loop {
			l.head = loop.edgeNext
		}
	}
	loop.edgeNext = nil
	loop.edgePrev = nil
	l.size--
}

// FaceLoopList is the circular boundary of one face, in traversal order.
type FaceLoopList struct {
	head *Loop
	size int
}

// Len returns the number of loops in the boundary.
func (l *FaceLoopList) Len() int { return l.size }

// Empty reports whether the boundary has no loops.
func (l *FaceLoopList) Empty() bool { return l.size == 0 }

// Front returns the first boundary loop, or nil.
func (l *FaceLoopList) Front() *Loop { return l.head }

// Back returns the last boundary loop, or nil.
func (l *FaceLoopList) Back() *Loop {
	if l.head == nil {
		return nil
	}
	return l.head.facePrev
}

// At returns the i-th loop from the head, wrapping around the boundary.
func (l *FaceLoopList) At(i int) *Loop {
	if l.head == nil {
		return nil
	}
	loop := l.head
	for n := i % l.size; n > 0; n-- {
		loop = loop.faceNext
	}
	return loop
}

// All iterates the loops in traversal order starting at the head.
func (l *FaceLoopList) All() iter.Seq[*Loop] {
	return func(yield func(*Loop) bool) {
		loop := l.head
		for n := 0; n < l.size; n++ {
			if !yield(loop) {
				return
			}
			loop = loop.faceNext
		}
	}
}

// Slice returns the loops in traversal order.
func (l *FaceLoopList) Slice() []*Loop {
	loops := make([]*Loop, 0, l.size)
	for loop := range l.All() {
		loops = append(loops, loop)
	}
	return loops
}

func (l *FaceLoopList) pushBack(loop *Loop) {
	if l.head == nil {
		loop.faceNext = loop
		loop.facePrev = loop
		l.head = loop
	} else {
		tail := l.head.facePrev
		loop.faceNext = l.head
		loop.facePrev = tail
		tail.faceNext = loop
		l.head.facePrev = loop
	}
	l.size++
}

func (l *FaceLoopList) remove(loop *Loop) {
	if loop.faceNext == loop {
		l.head = nil
	} else {
		loop.faceNext.facePrev = loop.facePrev
		loop.facePrev.faceNext = loop.faceNext
		if l.head == loop {
			l.head = loop.faceNext
		}
	}
	loop.faceNext = nil
	loop.facePrev = nil
	l.size--
}

// reverse flips the traversal order. Each loop then starts at its former destination.
func (l *FaceLoopList) reverse() {
	loops := l.Slice()
	starts := make([]*Vertex, len(loops))
	for i, loop := range loops {
		starts[i] = loop.faceNext.vertex
	}
	for i, loop := range loops {
		loop.faceNext, loop.facePrev = loop.facePrev, loop.faceNext
		loop.vertex = starts[i]
	}
}
