package brep

import (
	"errors"
	"testing"
)

// quad builds two triangles sharing the diagonal v0-v2.
func quad(t *testing.T) (*Mesh, [4]*Vertex, [2]*Face) {
	t.Helper()
	m := New()
	var v [4]*Vertex
	for i := range v {
		v[i] = m.AppendVertex()
	}
	f0 := m.AppendFace(v[0], v[1], v[2])
	f1 := m.AppendFace(v[0], v[2], v[3])
	return m, v, [2]*Face{f0, f1}
}

func mustPanicWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", target)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("panic %v does not wrap %v", r, target)
		}
	}()
	fn()
}

func TestAppendFace_Triangle(t *testing.T) {
	m := New()
	a, b, c := m.AppendVertex(), m.AppendVertex(), m.AppendVertex()
	f := m.AppendFace(a, b, c)

	if m.Edges().Len() != 3 {
		t.Errorf("edges = %d, want 3", m.Edges().Len())
	}
	if m.Loops().Len() != 3 {
		t.Errorf("loops = %d, want 3", m.Loops().Len())
	}
	if f.Loops().Len() != 3 {
		t.Errorf("face loops = %d, want 3", f.Loops().Len())
	}

	want := []*Vertex{a, b, c}
	for i, v := range f.Vertices() {
		if v != want[i] {
			t.Errorf("vertex %d = #%d, want #%d", i, v.Index(), want[i].Index())
		}
	}

	for loop := range f.Loops().All() {
		if loop.Next().Vertex() != loop.Destination() {
			t.Errorf("loop %d destination does not match next loop start", loop.Index())
		}
		if loop.Face() != f {
			t.Errorf("loop %d face mismatch", loop.Index())
		}
	}

	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAppendFace_SharedEdge(t *testing.T) {
	m, v, _ := quad(t)

	if m.Edges().Len() != 5 {
		t.Errorf("edges = %d, want 5", m.Edges().Len())
	}
	diag := m.FindEdge(v[0], v[2])
	if diag == nil {
		t.Fatal("diagonal edge not found")
	}
	if diag.Loops().Len() != 2 {
		t.Errorf("diagonal loops = %d, want 2", diag.Loops().Len())
	}
	if diag.IsBoundary() {
		t.Error("diagonal should not be a boundary edge")
	}
	if !m.FindEdge(v[0], v[1]).IsBoundary() {
		t.Error("v0-v1 should be a boundary edge")
	}
	if got := m.FindEdge(v[1], v[3]); got != nil {
		t.Errorf("FindEdge(v1, v3) = #%d, want nil", got.Index())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoopMembership(t *testing.T) {
	m, _, _ := quad(t)

	for _, loop := range m.Loops().All() {
		inEdge, inFace := 0, 0
		for l := range loop.Edge().Loops().All() {
			if l == loop {
				inEdge++
			}
		}
		for l := range loop.Face().Loops().All() {
			if l == loop {
				inFace++
			}
		}
		if inEdge != 1 || inFace != 1 {
			t.Errorf("loop %d: edge list count %d, face list count %d", loop.Index(), inEdge, inFace)
		}
	}
}

func TestVertexEdgeSymmetry(t *testing.T) {
	m, _, _ := quad(t)

	for _, e := range m.Edges().All() {
		for _, v := range e.Vertices() {
			found := false
			for x := range v.Edges().All() {
				if x == e {
					found = true
				}
			}
			if !found {
				t.Errorf("edge %d missing from vertex %d", e.Index(), v.Index())
			}
		}
	}

	for _, v := range m.Vertices().All() {
		for e := range v.Edges().All() {
			if e.Other(v) == nil {
				t.Errorf("vertex %d lists edge %d which does not touch it", v.Index(), e.Index())
			}
		}
	}

	// v0 and v2 touch the diagonal plus two sides
	if n := m.Vertices().At(0).Edges().Len(); n != 3 {
		t.Errorf("v0 degree = %d, want 3", n)
	}
	if n := m.Vertices().At(1).Edges().Len(); n != 2 {
		t.Errorf("v1 degree = %d, want 2", n)
	}
}

func TestEraseFace_RoundTrip(t *testing.T) {
	m := New()
	a, b, c := m.AppendVertex(), m.AppendVertex(), m.AppendVertex()
	f := m.AppendFace(a, b, c)
	m.EraseFace(f)

	if m.Faces().Len() != 0 || m.Loops().Len() != 0 {
		t.Errorf("faces = %d, loops = %d, want 0", m.Faces().Len(), m.Loops().Len())
	}
	if m.Vertices().Len() != 3 || m.Edges().Len() != 3 {
		t.Errorf("vertices = %d, edges = %d, want 3 and 3", m.Vertices().Len(), m.Edges().Len())
	}
	for _, e := range m.Edges().All() {
		if !e.Loops().Empty() {
			t.Errorf("edge %d still has loops", e.Index())
		}
	}
	if f.Index() != -1 {
		t.Errorf("erased face index = %d, want -1", f.Index())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestEraseVertex_Cascade(t *testing.T) {
	m, v, _ := quad(t)
	m.EraseVertex(v[0])

	if m.Vertices().Len() != 3 {
		t.Errorf("vertices = %d, want 3", m.Vertices().Len())
	}
	if m.Edges().Len() != 2 {
		t.Errorf("edges = %d, want 2", m.Edges().Len())
	}
	if m.Faces().Len() != 0 || m.Loops().Len() != 0 {
		t.Errorf("faces = %d, loops = %d, want 0", m.Faces().Len(), m.Loops().Len())
	}
	for _, x := range m.Vertices().All() {
		for e := range x.Edges().All() {
			if e.Other(x) == v[0] {
				t.Errorf("edge %d still references erased vertex", e.Index())
			}
		}
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestEraseEdge_Cascade(t *testing.T) {
	m, v, f := quad(t)
	m.EraseEdge(m.FindEdge(v[0], v[1]))

	if m.Faces().Len() != 1 || m.Faces().At(0) != f[1] {
		t.Fatalf("expected only the second face to survive")
	}
	if m.Edges().Len() != 4 {
		t.Errorf("edges = %d, want 4", m.Edges().Len())
	}
	if n := m.FindEdge(v[0], v[2]).Loops().Len(); n != 1 {
		t.Errorf("diagonal loops = %d, want 1", n)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestErase_ReindexesAndCompactsAttributes(t *testing.T) {
	m := New()
	ids, err := Emplace[int](m.Vertices().Attributes(), "id")
	if err != nil {
		t.Fatal(err)
	}
	var vs []*Vertex
	for i := 0; i < 4; i++ {
		v := m.AppendVertex()
		ids.Set(v.Index(), i*10)
		vs = append(vs, v)
	}

	m.EraseVertex(vs[1])

	if vs[3].Index() != 1 {
		t.Errorf("last vertex index = %d, want 1", vs[3].Index())
	}
	if ids.Len() != 3 {
		t.Errorf("attribute len = %d, want 3", ids.Len())
	}
	if got := ids.At(vs[3].Index()); got != 30 {
		t.Errorf("moved vertex id = %d, want 30", got)
	}
	for i, v := range m.Vertices().All() {
		if v.Index() != i {
			t.Errorf("vertex at %d reports index %d", i, v.Index())
		}
	}
}

func TestReverseFace(t *testing.T) {
	m := New()
	a, b, c := m.AppendVertex(), m.AppendVertex(), m.AppendVertex()
	f := m.AppendFace(a, b, c)
	m.ReverseFace(f)

	got := f.Vertices()
	want := []*Vertex{b, a, c}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vertices after reverse = %v, want %v", indices(got), indices(want))
		}
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestClear(t *testing.T) {
	m, _, _ := quad(t)
	if _, err := Emplace[float32](m.Faces().Attributes(), "area"); err != nil {
		t.Fatal(err)
	}
	m.Clear()

	if m.Vertices().Len()+m.Edges().Len()+m.Loops().Len()+m.Faces().Len() != 0 {
		t.Error("mesh not empty after Clear")
	}
	a, ok := m.Faces().Attributes().Get("area")
	if !ok || a.Len() != 0 {
		t.Error("attribute should survive Clear with zero length")
	}
}

func TestClone(t *testing.T) {
	m, _, _ := quad(t)
	weights, _ := Emplace[float32](m.Loops().Attributes(), "weight")
	for i := range weights.Data() {
		weights.Set(i, float32(i))
	}

	c := m.Clone()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate clone: %v", err)
	}
	if c.Edges().Len() != m.Edges().Len() || c.Faces().Len() != m.Faces().Len() {
		t.Fatal("clone element counts differ")
	}
	for i, f := range c.Faces().All() {
		if got, want := indices(f.Vertices()), indices(m.Faces().At(i).Vertices()); !equalInts(got, want) {
			t.Errorf("face %d vertices %v, want %v", i, got, want)
		}
	}

	cw, err := Lookup[float32](c.Loops().Attributes(), "weight")
	if err != nil {
		t.Fatal(err)
	}
	cw.Set(0, 99)
	if weights.At(0) == 99 {
		t.Error("clone shares attribute storage with source")
	}

	c.EraseVertex(c.Vertices().At(0))
	if m.Faces().Len() != 2 {
		t.Error("erasing in clone affected source")
	}
}

func TestOwnershipPanics(t *testing.T) {
	m := New()
	other := New()
	a, b, c := m.AppendVertex(), m.AppendVertex(), m.AppendVertex()
	foreign := other.AppendVertex()

	mustPanicWith(t, ErrForeignElement, func() { m.AppendEdge(a, foreign) })
	mustPanicWith(t, ErrForeignElement, func() { m.AppendFace(a, b, foreign) })
	mustPanicWith(t, ErrForeignElement, func() { m.EraseVertex(nil) })
	mustPanicWith(t, ErrDegenerateFace, func() { m.AppendFace(a, b) })
	mustPanicWith(t, ErrDegenerateEdge, func() { m.AppendEdge(a, a) })

	f := m.AppendFace(a, b, c)
	m.EraseFace(f)
	mustPanicWith(t, ErrForeignElement, func() { m.EraseFace(f) })

	if m.Owns(f) {
		t.Error("erased face still owned")
	}
	if !m.Owns(a) {
		t.Error("live vertex not owned")
	}
}

func indices(vs []*Vertex) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = v.Index()
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
