package brep

import "iter"

type element interface {
	comparable
	Index() int
	setIndex(i int)
}

// container is a dense array of elements with packed indices. Erasing swaps the last
// element into the vacated slot.
type container[E element] struct {
	elements   []E
	attributes AttributeMap
}

// Len returns the number of elements.
func (c *container[E]) Len() int { return len(c.elements) }

// Empty reports whether the container has no elements.
func (c *container[E]) Empty() bool { return len(c.elements) == 0 }

// At returns the element at index i.
func (c *container[E]) At(i int) E { return c.elements[i] }

// All iterates the elements in index order.
func (c *container[E]) All() iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		for i, e := range c.elements {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Slice returns a copy of the elements in index order.
func (c *container[E]) Slice() []E {
	return append([]E(nil), c.elements...)
}

// Attributes returns the per-element attribute map.
func (c *container[E]) Attributes() *AttributeMap { return &c.attributes }

func (c *container[E]) push(e E) E {
	e.setIndex(len(c.elements))
	c.elements = append(c.elements, e)
	c.attributes.grow()
	return e
}

func (c *container[E]) remove(e E) {
	i := e.Index()
	last := len(c.elements) - 1

	moved := c.elements[last]
	c.elements[i] = moved
	moved.setIndex(i)

	var zero E
	c.elements[last] = zero
	c.elements = c.elements[:last]
	c.attributes.swapRemove(i)

	e.setIndex(-1)
}

// VertexContainer holds the vertices of a mesh.
type VertexContainer struct {
	container[*Vertex]
}

// EdgeContainer holds the edges of a mesh.
type EdgeContainer struct {
	container[*Edge]
}

// LoopContainer holds the loops of a mesh.
type LoopContainer struct {
	container[*Loop]
}

// FaceContainer holds the faces of a mesh.
type FaceContainer struct {
	container[*Face]
}
