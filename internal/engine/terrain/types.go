// Package terrain turns heightfields into navigation meshes.
package terrain

import "errors"

// Heightfield errors.
var (
	ErrInvalidHeightfield = errors.New("invalid heightfield")
)

// Heightfield is a regular grid of cells with a height at every cell corner.
//
// X grows east and Z grows south; Y is up. Corner (x, z) sits at world position
// (x*CellSize, height, z*CellSize).
type Heightfield struct {
	Width    int       // Cells along X
	Depth    int       // Cells along Z
	CellSize float32   // World units per cell
	Heights  []float32 // (Width+1)*(Depth+1) corner heights, row-major by Z
	Blocked  []bool    // Width*Depth cells; nil means all walkable
}
