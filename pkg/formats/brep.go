// Package formats reads and writes mesh file formats.
package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/math"
)

// Brep format errors.
var (
	ErrMalformedBrepData      = errors.New("malformed brep data")
	ErrTruncatedBrepData      = fmt.Errorf("%w: truncated", ErrMalformedBrepData)
	ErrUnsupportedBrepVersion = errors.New("unsupported brep version")
	ErrInvalidBrepIndex       = errors.New("invalid brep element index")
	ErrInvalidBrepAttribute   = errors.New("invalid brep attribute")
)

// MaxBrepVertices bounds the vertex count a document may declare. Vertices need no
// data of their own, so the count cannot be checked against the input size.
const MaxBrepVertices = 1 << 22

// BrepVersion is the semantic version stored in the document.
type BrepVersion struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// BrepVersionCurrent is the only version this package reads and writes.
var BrepVersionCurrent = BrepVersion{Major: 1}

// String returns the version as "Major.Minor.Patch".
func (v BrepVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func parseBrepVersion(s string) (BrepVersion, bool) {
	var v BrepVersion
	var rest string
	n, _ := fmt.Sscanf(s, "%d.%d.%d%s", &v.Major, &v.Minor, &v.Patch, &rest)
	return v, n == 3
}

// BrepDomain names the element kind an attribute is attached to.
type BrepDomain string

// Attribute domains.
const (
	BrepDomainVertex BrepDomain = "vertex"
	BrepDomainEdge   BrepDomain = "edge"
	BrepDomainLoop   BrepDomain = "loop"
	BrepDomainFace   BrepDomain = "face"
)

// BrepFile is a parsed brep mesh file.
type BrepFile struct {
	Version BrepVersion
	Name    string
	Mesh    *brep.Mesh
}

// brepDocument is the msgpack map at the root of a brep file. Edges are flat vertex
// index pairs. Name is optional and not part of the original asset layout.
type brepDocument struct {
	Version    *string                  `msgpack:"version"`
	Name       string                   `msgpack:"name,omitempty"`
	Vertices   *uint64                  `msgpack:"vertices"`
	Edges      *[]uint64                `msgpack:"edges"`
	Faces      *[][]uint64              `msgpack:"faces"`
	Attributes map[string]brepAttribute `msgpack:"attributes,omitempty"`
}

// brepAttribute holds one attribute. Data is a flat array of domain size × vector size
// scalars. Name overrides the map key when the same name is used in several domains.
type brepAttribute struct {
	Name   string             `msgpack:"name,omitempty"`
	Type   string             `msgpack:"type"`
	Domain BrepDomain         `msgpack:"domain"`
	Data   msgpack.RawMessage `msgpack:"data"`
}

// ParseBrep parses a brep mesh from a msgpack document.
//
// Edges are created in file order before faces, so faces reuse them. The vector size of
// an attribute is its data length divided by its domain size. Float32 attributes of
// three components decode to math.Vec3; others decode to their scalar type, or to a
// fixed array of it when they have several components.
func ParseBrep(data []byte) (*BrepFile, error) {
	var doc brepDocument
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedBrepData, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedBrepData, err)
	}

	switch {
	case doc.Version == nil:
		return nil, fmt.Errorf("%w: missing version", ErrMalformedBrepData)
	case doc.Vertices == nil:
		return nil, fmt.Errorf("%w: missing vertices", ErrMalformedBrepData)
	case doc.Edges == nil:
		return nil, fmt.Errorf("%w: missing edges", ErrMalformedBrepData)
	case doc.Faces == nil:
		return nil, fmt.Errorf("%w: missing faces", ErrMalformedBrepData)
	}

	version, ok := parseBrepVersion(*doc.Version)
	if !ok || version != BrepVersionCurrent {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBrepVersion, *doc.Version)
	}

	vertexCount := *doc.Vertices
	if vertexCount > MaxBrepVertices {
		return nil, fmt.Errorf("%w: %d vertices exceeds %d", ErrMalformedBrepData, vertexCount, MaxBrepVertices)
	}

	m := brep.New()
	vertices := make([]*brep.Vertex, vertexCount)
	for i := range vertices {
		vertices[i] = m.AppendVertex()
	}

	// Edges
	edges := *doc.Edges
	if len(edges)%2 != 0 {
		return nil, fmt.Errorf("%w: edge data is missing a vertex", ErrInvalidBrepIndex)
	}
	for i := 0; i < len(edges); i += 2 {
		a, b := edges[i], edges[i+1]
		if a >= vertexCount || b >= vertexCount || a == b {
			return nil, fmt.Errorf("%w: edge %d joins %d and %d", ErrInvalidBrepIndex, i/2, a, b)
		}
		m.AppendEdge(vertices[a], vertices[b])
	}

	// Faces
	for i, indices := range *doc.Faces {
		if len(indices) < 3 {
			return nil, fmt.Errorf("%w: face %d has %d vertices", ErrInvalidBrepIndex, i, len(indices))
		}
		face := make([]*brep.Vertex, len(indices))
		for j, idx := range indices {
			if idx >= vertexCount {
				return nil, fmt.Errorf("%w: face %d vertex %d", ErrInvalidBrepIndex, i, idx)
			}
			face[j] = vertices[idx]
		}
		for j, v := range face {
			if v == face[(j+1)%len(face)] {
				return nil, fmt.Errorf("%w: face %d repeats vertex %d", ErrInvalidBrepIndex, i, v.Index())
			}
		}
		m.AppendFace(face...)
	}

	// Attributes
	for key, a := range doc.Attributes {
		name := key
		if a.Name != "" {
			name = a.Name
		}
		if err := parseBrepAttribute(m, name, a); err != nil {
			return nil, err
		}
	}

	return &BrepFile{Version: version, Name: doc.Name, Mesh: m}, nil
}

// ParseBrepFile parses a brep mesh file from disk. Files without a stored name are
// named after the file.
func ParseBrepFile(path string) (*BrepFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading brep file: %w", err)
	}
	file, err := ParseBrep(data)
	if err != nil {
		return nil, err
	}
	if file.Name == "" {
		base := filepath.Base(path)
		file.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return file, nil
}

func brepAttributes(m *brep.Mesh, d BrepDomain) (*brep.AttributeMap, int, bool) {
	switch d {
	case BrepDomainVertex:
		return m.Vertices().Attributes(), m.Vertices().Len(), true
	case BrepDomainEdge:
		return m.Edges().Attributes(), m.Edges().Len(), true
	case BrepDomainLoop:
		return m.Loops().Attributes(), m.Loops().Len(), true
	case BrepDomainFace:
		return m.Faces().Attributes(), m.Faces().Len(), true
	default:
		return nil, 0, false
	}
}

func parseBrepAttribute(m *brep.Mesh, name string, a brepAttribute) error {
	attrs, domainSize, ok := brepAttributes(m, a.Domain)
	if !ok {
		return fmt.Errorf("%w: %q has unsupported domain %q", ErrInvalidBrepAttribute, name, a.Domain)
	}
	if attrs.Contains(name) {
		return fmt.Errorf("%w: duplicate %s attribute %q", ErrInvalidBrepAttribute, a.Domain, name)
	}

	switch a.Type {
	case "int8":
		return parseBrepInts[int8](attrs, name, domainSize, a.Data)
	case "int16":
		return parseBrepInts[int16](attrs, name, domainSize, a.Data)
	case "int32":
		return parseBrepInts[int32](attrs, name, domainSize, a.Data)
	case "int64":
		return parseBrepInts[int64](attrs, name, domainSize, a.Data)
	case "uint8":
		return parseBrepUints[uint8](attrs, name, domainSize, a.Data)
	case "uint16":
		return parseBrepUints[uint16](attrs, name, domainSize, a.Data)
	case "uint32":
		return parseBrepUints[uint32](attrs, name, domainSize, a.Data)
	case "uint64":
		return parseBrepUints[uint64](attrs, name, domainSize, a.Data)
	case "float32":
		return parseBrepFloats[float32](attrs, name, domainSize, a.Data)
	case "float64":
		return parseBrepFloats[float64](attrs, name, domainSize, a.Data)
	default:
		return fmt.Errorf("%w: %q has unsupported type %q", ErrInvalidBrepAttribute, name, a.Type)
	}
}

type brepScalar interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

func decodeBrepData[S any](name string, raw msgpack.RawMessage) ([]S, error) {
	var values []S
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %q has no data", ErrInvalidBrepAttribute, name)
	}
	if err := msgpack.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidBrepAttribute, name, err)
	}
	return values, nil
}

func parseBrepInts[T ~int8 | ~int16 | ~int32 | ~int64](attrs *brep.AttributeMap, name string, domainSize int, raw msgpack.RawMessage) error {
	values, err := decodeBrepData[int64](name, raw)
	if err != nil {
		return err
	}
	data := make([]T, len(values))
	for i, v := range values {
		data[i] = T(v)
		if int64(data[i]) != v {
			return fmt.Errorf("%w: %q value %d out of range", ErrInvalidBrepAttribute, name, v)
		}
	}
	return makeBrepAttribute(attrs, name, domainSize, data)
}

func parseBrepUints[T ~uint8 | ~uint16 | ~uint32 | ~uint64](attrs *brep.AttributeMap, name string, domainSize int, raw msgpack.RawMessage) error {
	values, err := decodeBrepData[uint64](name, raw)
	if err != nil {
		return err
	}
	data := make([]T, len(values))
	for i, v := range values {
		data[i] = T(v)
		if uint64(data[i]) != v {
			return fmt.Errorf("%w: %q value %d out of range", ErrInvalidBrepAttribute, name, v)
		}
	}
	return makeBrepAttribute(attrs, name, domainSize, data)
}

// Float data may be stored as msgpack doubles regardless of the declared type.
func parseBrepFloats[T ~float32 | ~float64](attrs *brep.AttributeMap, name string, domainSize int, raw msgpack.RawMessage) error {
	values, err := decodeBrepData[float64](name, raw)
	if err != nil {
		return err
	}
	data := make([]T, len(values))
	for i, v := range values {
		data[i] = T(v)
	}
	return makeBrepAttribute(attrs, name, domainSize, data)
}

func makeBrepAttribute[T brepScalar](attrs *brep.AttributeMap, name string, domainSize int, data []T) error {
	size := 1
	if domainSize > 0 {
		size = len(data) / domainSize
		if size*domainSize != len(data) {
			return fmt.Errorf("%w: %q has %d values for %d elements", ErrInvalidBrepAttribute, name, len(data), domainSize)
		}
	} else if len(data) != 0 {
		return fmt.Errorf("%w: %q has %d values for an empty domain", ErrInvalidBrepAttribute, name, len(data))
	}

	switch size {
	case 1:
		return emplaceBrepValues(attrs, name, data, 1, func(c []T) T { return c[0] })
	case 2:
		return emplaceBrepValues(attrs, name, data, 2, func(c []T) [2]T { return [2]T(c) })
	case 3:
		if f, ok := any(data).([]float32); ok {
			return emplaceBrepValues(attrs, name, f, 3, func(c []float32) math.Vec3 {
				return math.Vec3{X: c[0], Y: c[1], Z: c[2]}
			})
		}
		return emplaceBrepValues(attrs, name, data, 3, func(c []T) [3]T { return [3]T(c) })
	case 4:
		return emplaceBrepValues(attrs, name, data, 4, func(c []T) [4]T { return [4]T(c) })
	default:
		return fmt.Errorf("%w: %q has unsupported vector size %d", ErrInvalidBrepAttribute, name, size)
	}
}

func emplaceBrepValues[T, V any](attrs *brep.AttributeMap, name string, data []T, size int, pack func([]T) V) error {
	a, err := brep.Emplace[V](attrs, name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBrepAttribute, err)
	}
	for i := range a.Data() {
		a.Set(i, pack(data[i*size:(i+1)*size]))
	}
	return nil
}

// EncodeBrep writes a mesh as a brep msgpack document. Every edge is written, and faces
// are written as vertex indices in boundary order starting at their first loop, so a
// parser recreates the same edges and loops. Loop attributes are permuted to match.
//
// An attribute name used in several domains is stored under "<domain>.<name>" keys with
// the real name alongside. Attributes whose values are not numbers, fixed arrays of up
// to four numbers, or math.Vec3 are rejected with ErrInvalidBrepAttribute.
func EncodeBrep(w io.Writer, name string, m *brep.Mesh) error {
	version := BrepVersionCurrent.String()
	vertexCount := uint64(m.Vertices().Len())

	edges := make([]uint64, 0, 2*m.Edges().Len())
	for _, e := range m.Edges().All() {
		ends := e.Vertices()
		edges = append(edges, uint64(ends[0].Index()), uint64(ends[1].Index()))
	}

	faces := make([][]uint64, 0, m.Faces().Len())
	loopOrder := make([]int, 0, m.Loops().Len())
	for _, f := range m.Faces().All() {
		face := make([]uint64, 0, f.Loops().Len())
		for loop := range f.Loops().All() {
			face = append(face, uint64(loop.Vertex().Index()))
			loopOrder = append(loopOrder, loop.Index())
		}
		faces = append(faces, face)
	}

	domains := []struct {
		domain BrepDomain
		attrs  *brep.AttributeMap
		order  []int
	}{
		{BrepDomainVertex, m.Vertices().Attributes(), nil},
		{BrepDomainEdge, m.Edges().Attributes(), nil},
		{BrepDomainLoop, m.Loops().Attributes(), loopOrder},
		{BrepDomainFace, m.Faces().Attributes(), nil},
	}

	uses := make(map[string]int)
	for _, d := range domains {
		for _, attrName := range d.attrs.Names() {
			uses[attrName]++
		}
	}

	attributes := make(map[string]brepAttribute)
	for _, d := range domains {
		for _, attrName := range d.attrs.Names() {
			a, _ := d.attrs.Get(attrName)
			encoded, err := encodeBrepAttribute(d.domain, a, d.order)
			if err != nil {
				return err
			}
			key := attrName
			if uses[attrName] > 1 {
				key = string(d.domain) + "." + attrName
				encoded.Name = attrName
			}
			attributes[key] = encoded
		}
	}

	doc := brepDocument{
		Version:    &version,
		Name:       name,
		Vertices:   &vertexCount,
		Edges:      &edges,
		Faces:      &faces,
		Attributes: attributes,
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding brep: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// EncodeBrepFile writes a mesh to disk in the brep format.
func EncodeBrepFile(path, name string, m *brep.Mesh) error {
	var buf bytes.Buffer
	if err := EncodeBrep(&buf, name, m); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing brep file: %w", err)
	}
	return nil
}

// brepLayout returns the scalar kind and component count for values of type t.
func brepLayout(t reflect.Type) (reflect.Kind, int, bool) {
	switch t.Kind() {
	case reflect.Array:
		if t.Len() < 2 || t.Len() > 4 || !isBrepScalar(t.Elem().Kind()) {
			return 0, 0, false
		}
		return t.Elem().Kind(), t.Len(), true
	case reflect.Struct:
		if t == reflect.TypeFor[math.Vec3]() {
			return reflect.Float32, 3, true
		}
		return 0, 0, false
	default:
		return t.Kind(), 1, isBrepScalar(t.Kind())
	}
}

func isBrepScalar(k reflect.Kind) bool {
	switch k {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// encodeBrepAttribute flattens an attribute into msgpack scalars. Integers are widened
// to 64 bits so uint8 data is written as an array rather than a msgpack bin.
func encodeBrepAttribute(d BrepDomain, a brep.Attribute, order []int) (brepAttribute, error) {
	kind, size, ok := brepLayout(a.Type())
	if !ok {
		return brepAttribute{}, fmt.Errorf("%w: %s attribute %q has unsupported type %s", ErrInvalidBrepAttribute, d, a.Name(), a.Type())
	}

	src := reflect.ValueOf(a.Values())
	rows := src.Len()
	if order != nil {
		rows = len(order)
	}

	component := func(row, j int) reflect.Value {
		idx := row
		if order != nil {
			idx = order[row]
		}
		v := src.Index(idx)
		switch {
		case size == 1:
			return v
		case v.Kind() == reflect.Struct:
			return v.Field(j)
		default:
			return v.Index(j)
		}
	}

	var flat any
	switch kind {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		data := make([]int64, 0, rows*size)
		for row := 0; row < rows; row++ {
			for j := 0; j < size; j++ {
				data = append(data, component(row, j).Int())
			}
		}
		flat = data
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		data := make([]uint64, 0, rows*size)
		for row := 0; row < rows; row++ {
			for j := 0; j < size; j++ {
				data = append(data, component(row, j).Uint())
			}
		}
		flat = data
	case reflect.Float32:
		data := make([]float32, 0, rows*size)
		for row := 0; row < rows; row++ {
			for j := 0; j < size; j++ {
				data = append(data, float32(component(row, j).Float()))
			}
		}
		flat = data
	default:
		data := make([]float64, 0, rows*size)
		for row := 0; row < rows; row++ {
			for j := 0; j < size; j++ {
				data = append(data, component(row, j).Float())
			}
		}
		flat = data
	}

	raw, err := msgpack.Marshal(flat)
	if err != nil {
		return brepAttribute{}, fmt.Errorf("%w: %q: %v", ErrInvalidBrepAttribute, a.Name(), err)
	}
	return brepAttribute{Type: kind.String(), Domain: d, Data: raw}, nil
}
