// Package config handles meshtool configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalidConfig is wrapped by every error Validate reports.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all tool settings.
type Config struct {
	Navmesh NavmeshConfig `yaml:"navmesh"`
	Procgen ProcgenConfig `yaml:"procgen"`
	Model   ModelConfig   `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
}

// NavmeshConfig holds traversal and agent settings.
type NavmeshConfig struct {
	MaxSteps   int     `yaml:"max_steps"`   // 0 = face count + 1
	Epsilon    float32 `yaml:"epsilon"`     // Barycentric tolerance
	AgentSpeed float32 `yaml:"agent_speed"` // Units per second
}

// ProcgenConfig holds procedural mesh generation settings.
type ProcgenConfig struct {
	MeshCells   int     `yaml:"mesh_cells"`   // Marching cubes cells along the longest axis
	WeldEpsilon float32 `yaml:"weld_epsilon"` // Corners closer than this share a vertex
}

// ModelConfig holds render model build settings.
type ModelConfig struct {
	ReverseWinding bool `yaml:"reverse_winding"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Navmesh: NavmeshConfig{
			MaxSteps:   0,
			Epsilon:    1e-5,
			AgentSpeed: 4,
		},
		Procgen: ProcgenConfig{
			MeshCells:   32,
			WeldEpsilon: 1e-4,
		},
		Model: ModelConfig{
			ReverseWinding: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var err error
	if c.Navmesh.MaxSteps < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: navmesh.max_steps must not be negative", ErrInvalidConfig))
	}
	if c.Navmesh.Epsilon <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: navmesh.epsilon must be positive", ErrInvalidConfig))
	}
	if c.Navmesh.AgentSpeed <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: navmesh.agent_speed must be positive", ErrInvalidConfig))
	}
	if c.Procgen.MeshCells < 2 {
		err = multierr.Append(err, fmt.Errorf("%w: procgen.mesh_cells must be at least 2", ErrInvalidConfig))
	}
	if c.Procgen.WeldEpsilon <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: procgen.weld_epsilon must be positive", ErrInvalidConfig))
	}
	return err
}
