package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-geom/internal/logger"
	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/formats"
	"github.com/Faultbox/midgard-geom/pkg/math"
)

// Map is a loaded navigation mesh.
type Map struct {
	Name       string
	Mesh       *brep.Mesh
	PathFinder *PathFinder
}

// NewMap wraps a mesh. The mesh must carry vertex positions.
func NewMap(name string, m *brep.Mesh) (*Map, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("map %s: %w", name, err)
	}
	pf, err := NewPathFinder(m)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", name, err)
	}
	return &Map{Name: name, Mesh: m, PathFinder: pf}, nil
}

// Spawn places a new agent on the face closest to pos.
func (m *Map) Spawn(pos math.Vec3) *Agent {
	f := m.PathFinder.Locate(pos)
	if f == nil {
		return nil
	}
	return &Agent{Face: f, Position: pos}
}

// Manager manages the current map and map transitions.
type Manager struct {
	current *Map
	loading bool
}

// NewManager creates a new world manager.
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the current map.
func (m *Manager) Current() *Map {
	return m.current
}

// LoadMap loads a brep mesh file and makes it the current map.
func (m *Manager) LoadMap(path string) error {
	m.loading = true
	defer func() { m.loading = false }()

	file, err := formats.ParseBrepFile(path)
	if err != nil {
		return fmt.Errorf("loading map %s: %w", path, err)
	}
	newMap, err := NewMap(file.Name, file.Mesh)
	if err != nil {
		return fmt.Errorf("loading map %s: %w", path, err)
	}

	logger.Named("world").Info("map loaded",
		zap.String("name", newMap.Name),
		zap.Int("faces", newMap.Mesh.Faces().Len()))

	m.current = newMap
	return nil
}

// IsLoading returns whether a map is currently loading.
func (m *Manager) IsLoading() bool {
	return m.loading
}
