package terrain

import "fmt"

// NewHeightfield returns a flat, fully walkable heightfield.
func NewHeightfield(width, depth int, cellSize float32) *Heightfield {
	return &Heightfield{
		Width:    width,
		Depth:    depth,
		CellSize: cellSize,
		Heights:  make([]float32, (width+1)*(depth+1)),
		Blocked:  make([]bool, width*depth),
	}
}

// Validate checks dimensions against the backing slices.
func (h *Heightfield) Validate() error {
	if h.Width <= 0 || h.Depth <= 0 || h.CellSize <= 0 {
		return fmt.Errorf("%w: %dx%d cells of size %g", ErrInvalidHeightfield, h.Width, h.Depth, h.CellSize)
	}
	if len(h.Heights) != (h.Width+1)*(h.Depth+1) {
		return fmt.Errorf("%w: %d heights for %dx%d corners", ErrInvalidHeightfield, len(h.Heights), h.Width+1, h.Depth+1)
	}
	if h.Blocked != nil && len(h.Blocked) != h.Width*h.Depth {
		return fmt.Errorf("%w: %d blocked flags for %d cells", ErrInvalidHeightfield, len(h.Blocked), h.Width*h.Depth)
	}
	return nil
}

// CornerHeight returns the height of corner (x, z).
func (h *Heightfield) CornerHeight(x, z int) float32 {
	return h.Heights[z*(h.Width+1)+x]
}

// SetCornerHeight sets the height of corner (x, z).
func (h *Heightfield) SetCornerHeight(x, z int, height float32) {
	h.Heights[z*(h.Width+1)+x] = height
}

// SetBlocked marks cell (x, z) as blocked or walkable.
func (h *Heightfield) SetBlocked(x, z int, blocked bool) {
	if h.Blocked == nil {
		h.Blocked = make([]bool, h.Width*h.Depth)
	}
	h.Blocked[z*h.Width+x] = blocked
}

// IsCellWalkable reports whether cell (x, z) exists and is not blocked.
func (h *Heightfield) IsCellWalkable(x, z int) bool {
	if x < 0 || z < 0 || x >= h.Width || z >= h.Depth {
		return false
	}
	return h.Blocked == nil || !h.Blocked[z*h.Width+x]
}

// IsWalkable checks if a world position lies on a walkable cell.
func (h *Heightfield) IsWalkable(worldX, worldZ float32) bool {
	if worldX < 0 || worldZ < 0 {
		return false
	}
	return h.IsCellWalkable(int(worldX/h.CellSize), int(worldZ/h.CellSize))
}

// HeightAt returns the bilinearly interpolated height at a world position. Positions
// outside the grid are clamped to its border.
func (h *Heightfield) HeightAt(worldX, worldZ float32) float32 {
	cellFX := worldX / h.CellSize
	cellFZ := worldZ / h.CellSize

	cellX := clampi(int(cellFX), 0, h.Width-1)
	cellZ := clampi(int(cellFZ), 0, h.Depth-1)

	fracX := clampf(cellFX-float32(cellX), 0, 1)
	fracZ := clampf(cellFZ-float32(cellZ), 0, 1)

	// North edge (lower Z), then south edge
	north := h.CornerHeight(cellX, cellZ)*(1-fracX) + h.CornerHeight(cellX+1, cellZ)*fracX
	south := h.CornerHeight(cellX, cellZ+1)*(1-fracX) + h.CornerHeight(cellX+1, cellZ+1)*fracX
	return north*(1-fracZ) + south*fracZ
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampi(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
