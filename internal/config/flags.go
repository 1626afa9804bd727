package config

import "flag"

// Flags holds command line overrides registered on a FlagSet.
type Flags struct {
	config   *string
	debug    *bool
	logFile  *string
	maxSteps *int
	cells    *int
}

// RegisterFlags adds the shared config flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:   fs.String("config", "", "Path to config file"),
		debug:    fs.Bool("debug", false, "Enable debug logging"),
		logFile:  fs.String("log", "", "Write logs to this file"),
		maxSteps: fs.Int("max-steps", 0, "Navmesh traversal step limit"),
		cells:    fs.Int("cells", 0, "Marching cubes resolution"),
	}
}

// ConfigPath returns the explicit config path if provided via --config flag.
func (f *Flags) ConfigPath() string {
	return *f.config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
	if *f.maxSteps > 0 {
		cfg.Navmesh.MaxSteps = *f.maxSteps
	}
	if *f.cells > 0 {
		cfg.Procgen.MeshCells = *f.cells
	}
}
