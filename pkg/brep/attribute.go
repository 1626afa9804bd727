package brep

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// Attribute errors.
var (
	ErrAttributeNotFound = errors.New("attribute not found")
	ErrAttributeType     = errors.New("attribute type mismatch")
	ErrAttributeExists   = errors.New("attribute already exists")
)

// Attribute is a named, dense per-element array with a runtime element type.
type Attribute interface {
	Name() string
	Len() int
	// Type returns the element type of the stored values.
	Type() reflect.Type
	// Values returns the backing slice as []T.
	Values() any

	grow()
	swapRemove(i int)
	clone() Attribute
}

// TypedAttribute holds one value of type T per element.
type TypedAttribute[T any] struct {
	name string
	data []T
}

// Name returns the attribute name.
func (a *TypedAttribute[T]) Name() string { return a.name }

// Len returns the number of values, always equal to the element count.
func (a *TypedAttribute[T]) Len() int { return len(a.data) }

// Type returns reflect type T.
func (a *TypedAttribute[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

// Values returns the backing slice.
func (a *TypedAttribute[T]) Values() any { return a.data }

// At returns the value of element i.
func (a *TypedAttribute[T]) At(i int) T { return a.data[i] }

// Set stores the value of element i.
func (a *TypedAttribute[T]) Set(i int, v T) { a.data[i] = v }

// Data returns the backing slice. Writes through it are visible to the attribute;
// its length must not be changed.
func (a *TypedAttribute[T]) Data() []T { return a.data }

func (a *TypedAttribute[T]) grow() {
	var zero T
	a.data = append(a.data, zero)
}

func (a *TypedAttribute[T]) swapRemove(i int) {
	last := len(a.data) - 1
	a.data[i] = a.data[last]
	var zero T
	a.data[last] = zero
	a.data = a.data[:last]
}

func (a *TypedAttribute[T]) clone() Attribute {
	return &TypedAttribute[T]{name: a.name, data: append([]T(nil), a.data...)}
}

// AttributeMap maps names to the attributes of one element kind.
type AttributeMap struct {
	attributes   map[string]Attribute
	elementCount int
}

// Len returns the number of attributes.
func (m *AttributeMap) Len() int { return len(m.attributes) }

// Contains reports whether an attribute with the given name exists.
func (m *AttributeMap) Contains(name string) bool {
	_, ok := m.attributes[name]
	return ok
}

// Get returns the type-erased attribute with the given name.
func (m *AttributeMap) Get(name string) (Attribute, bool) {
	a, ok := m.attributes[name]
	return a, ok
}

// Remove deletes an attribute. It returns false if no such attribute exists.
func (m *AttributeMap) Remove(name string) bool {
	if _, ok := m.attributes[name]; !ok {
		return false
	}
	delete(m.attributes, name)
	return true
}

// Names returns the attribute names in sorted order.
func (m *AttributeMap) Names() []string {
	names := make([]string, 0, len(m.attributes))
	for name := range m.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Each calls fn for every attribute in name order.
func (m *AttributeMap) Each(fn func(Attribute)) {
	for _, name := range m.Names() {
		fn(m.attributes[name])
	}
}

func (m *AttributeMap) grow() {
	for _, a := range m.attributes {
		a.grow()
	}
	m.elementCount++
}

func (m *AttributeMap) swapRemove(i int) {
	for _, a := range m.attributes {
		a.swapRemove(i)
	}
	m.elementCount--
}

func (m *AttributeMap) cloneFrom(other *AttributeMap) {
	m.elementCount = other.elementCount
	m.attributes = make(map[string]Attribute, len(other.attributes))
	for name, a := range other.attributes {
		m.attributes[name] = a.clone()
	}
}

// Emplace creates a zero-filled attribute of type T.
func Emplace[T any](m *AttributeMap, name string) (*TypedAttribute[T], error) {
	if m.Contains(name) {
		return nil, fmt.Errorf("%w: %q", ErrAttributeExists, name)
	}
	a := &TypedAttribute[T]{name: name, data: make([]T, m.elementCount)}
	if m.attributes == nil {
		m.attributes = make(map[string]Attribute)
	}
	m.attributes[name] = a
	return a, nil
}

// Lookup returns the attribute with the given name as type T.
func Lookup[T any](m *AttributeMap, name string) (*TypedAttribute[T], error) {
	a, ok := m.attributes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAttributeNotFound, name)
	}
	typed, ok := a.(*TypedAttribute[T])
	if !ok {
		return nil, fmt.Errorf("%w: %q holds %s, requested %s",
			ErrAttributeType, name, a.Type(), reflect.TypeFor[T]())
	}
	return typed, nil
}

// Ensure returns the attribute with the given name, creating it if absent.
func Ensure[T any](m *AttributeMap, name string) (*TypedAttribute[T], error) {
	a, err := Lookup[T](m, name)
	if errors.Is(err, ErrAttributeNotFound) {
		return Emplace[T](m, name)
	}
	return a, err
}
