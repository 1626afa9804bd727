// Package model builds GPU-ready triangle meshes from B-rep meshes.
package model

import "github.com/go-gl/mathgl/mgl32"

// Vertex represents a render vertex with position, normal and barycentric corner.
type Vertex struct {
	Position    [3]float32
	Normal      [3]float32
	Barycentric [3]float32
}

// MaterialGroup groups triangles by material index for batched rendering.
type MaterialGroup struct {
	Material   uint8
	StartIndex int32
	IndexCount int32
}

// Mesh holds the complete model mesh data ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Groups   []MaterialGroup
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of the model.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// BuildOptions contains options for mesh building.
type BuildOptions struct {
	// ReverseWinding reverses triangle winding order (for mirrored models).
	ReverseWinding bool
	// Transform is applied to positions and normals. Nil means identity.
	Transform *mgl32.Mat4
	// SmoothNormals averages normals of render vertices sharing a position.
	SmoothNormals bool
}
