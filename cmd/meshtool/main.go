// meshtool is a CLI utility for working with B-rep mesh files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-geom/internal/config"
	"github.com/Faultbox/midgard-geom/internal/engine/model"
	"github.com/Faultbox/midgard-geom/internal/engine/navmesh"
	"github.com/Faultbox/midgard-geom/internal/engine/picking"
	"github.com/Faultbox/midgard-geom/internal/engine/procgen"
	"github.com/Faultbox/midgard-geom/internal/engine/terrain"
	"github.com/Faultbox/midgard-geom/internal/game/world"
	"github.com/Faultbox/midgard-geom/internal/logger"
	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/formats"
	"github.com/Faultbox/midgard-geom/pkg/math"
	"github.com/Faultbox/midgard-geom/pkg/meshops"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "validate", "check":
		err = cmdValidate(args)
	case "normals":
		err = cmdNormals(args)
	case "traverse", "walk":
		err = cmdTraverse(args)
	case "path":
		err = cmdPath(args)
	case "pick":
		err = cmdPick(args)
	case "gen":
		err = cmdGen(args)
	case "model":
		err = cmdModel(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - B-rep mesh utility

Usage:
  meshtool <command> [options]

Commands:
  info <file.brep>                          Show element counts and attributes
  validate <file.brep>                      Check mesh topology
  normals [-vertex] [-barycentric] <in> <out>
                                            Generate normals and write a new file
  traverse -face N -from X,Y,Z -to X,Y,Z <file.brep>
                                            Walk a straight path over the surface
  path -from X,Y,Z -to X,Y,Z <file.brep>    Find a face path and walk an agent along it
  pick -origin X,Y,Z [-dir X,Y,Z] <file.brep>
                                            Cast a ray and report the face it hits
  gen box|cylinder|grid [options] <out>     Generate a mesh
  model [-reverse] <file.brep>              Build a render mesh and show statistics

Shared options:
  -config PATH   Config file (default ./meshtool.yaml)
  -debug         Enable debug logging
  -log PATH      Also write logs to PATH
  -max-steps N   Traversal step limit
  -cells N       Marching cubes resolution

Examples:
  meshtool gen box -size 2,1,1 box.brep
  meshtool gen grid -width 8 -depth 8 -blocked 3,3 field.brep
  meshtool traverse -face 0 -from 0.2,0,0.5 -to 6.5,0,7.5 field.brep`)
}

// setup parses args, loads config and initializes logging.
func setup(fs *flag.FlagSet, args []string) (*config.Config, error) {
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func usageError(usage string) error {
	return fmt.Errorf("usage: meshtool %s", usage)
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	if _, err := setup(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("info <file.brep>")
	}

	file, err := formats.ParseBrepFile(fs.Arg(0))
	if err != nil {
		return err
	}
	m := file.Mesh

	boundary := 0
	for _, e := range m.Edges().All() {
		if e.IsBoundary() {
			boundary++
		}
	}

	fmt.Printf("File:     %s\n", fs.Arg(0))
	fmt.Printf("Name:     %s\n", file.Name)
	fmt.Printf("Version:  %s\n", file.Version)
	fmt.Printf("Vertices: %d\n", m.Vertices().Len())
	fmt.Printf("Edges:    %d (%d boundary)\n", m.Edges().Len(), boundary)
	fmt.Printf("Loops:    %d\n", m.Loops().Len())
	fmt.Printf("Faces:    %d\n", m.Faces().Len())
	fmt.Println()
	fmt.Println("Attributes:")

	domains := []struct {
		name  string
		attrs *brep.AttributeMap
	}{
		{"vertex", m.Vertices().Attributes()},
		{"edge", m.Edges().Attributes()},
		{"loop", m.Loops().Attributes()},
		{"face", m.Faces().Attributes()},
	}
	for _, d := range domains {
		d.attrs.Each(func(a brep.Attribute) {
			fmt.Printf("  %-7s %-16s %s\n", d.name, a.Name(), a.Type())
		})
	}
	return nil
}

func cmdValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	if _, err := setup(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("validate <file.brep>")
	}

	file, err := formats.ParseBrepFile(fs.Arg(0))
	if err != nil {
		return err
	}

	errs := multierr.Errors(file.Mesh.Validate())
	if len(errs) == 0 {
		fmt.Printf("%s: ok\n", fs.Arg(0))
		return nil
	}
	for _, e := range errs {
		fmt.Printf("  %v\n", e)
	}
	return fmt.Errorf("%s: %d problems", fs.Arg(0), len(errs))
}

func cmdNormals(args []string) error {
	fs := flag.NewFlagSet("normals", flag.ExitOnError)
	vertex := fs.Bool("vertex", false, "Also generate vertex normals")
	bary := fs.Bool("barycentric", false, "Also generate loop barycentric coordinates")
	if _, err := setup(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return usageError("normals [-vertex] [-barycentric] <in.brep> <out.brep>")
	}

	file, err := formats.ParseBrepFile(fs.Arg(0))
	if err != nil {
		return err
	}
	m := file.Mesh

	if err := meshops.GenerateFaceNormals(m); err != nil {
		return err
	}
	if *vertex {
		if err := meshops.GenerateVertexNormals(m); err != nil {
			return err
		}
	}
	if *bary {
		if err := meshops.GenerateLoopBarycentric(m); err != nil {
			return err
		}
	}

	if err := formats.EncodeBrepFile(fs.Arg(1), file.Name, m); err != nil {
		return err
	}
	logger.Info("wrote normals", zap.String("path", fs.Arg(1)), zap.Int("faces", m.Faces().Len()))
	return nil
}

func cmdTraverse(args []string) error {
	fs := flag.NewFlagSet("traverse", flag.ExitOnError)
	face := fs.Int("face", -1, "Start face index (default: face closest to -from)")
	from := fs.String("from", "", "Start point X,Y,Z")
	to := fs.String("to", "", "Target point X,Y,Z")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 || *from == "" || *to == "" {
		return usageError("traverse [-face N] -from X,Y,Z -to X,Y,Z <file.brep>")
	}

	start, err := parseVec3(*from)
	if err != nil {
		return err
	}
	target, err := parseVec3(*to)
	if err != nil {
		return err
	}

	wm, err := loadMap(fs.Arg(0))
	if err != nil {
		return err
	}

	var f *brep.Face
	switch {
	case *face < 0:
		f = wm.PathFinder.Locate(start)
	case *face < wm.Mesh.Faces().Len():
		f = wm.Mesh.Faces().At(*face)
	default:
		return fmt.Errorf("face %d out of range (%d faces)", *face, wm.Mesh.Faces().Len())
	}
	if f == nil {
		return fmt.Errorf("%s has no faces", fs.Arg(0))
	}

	res, err := navmesh.Traverse(wm.Mesh, f, start, target, navOptions(cfg))
	if err != nil {
		return err
	}

	fmt.Printf("Face:      %d\n", res.Face.Index())
	fmt.Printf("Feature:   %s\n", describeFeature(res.Feature))
	fmt.Printf("Region:    %s\n", res.Region)
	fmt.Printf("Point:     %s\n", formatVec3(res.ClosestPoint))
	fmt.Printf("Unfolded:  %s\n", formatVec3(res.UnfoldedTarget))
	fmt.Printf("Bary:      %s\n", formatVec3(res.Barycentric))
	fmt.Printf("Steps:     %d\n", res.Steps)
	if res.Capped {
		fmt.Println("Capped:    step limit reached")
	}
	return nil
}

func cmdPath(args []string) error {
	fs := flag.NewFlagSet("path", flag.ExitOnError)
	from := fs.String("from", "", "Start point X,Y,Z")
	to := fs.String("to", "", "Destination X,Y,Z")
	tick := fs.Int("tick", 100, "Simulation tick in milliseconds")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 || *from == "" || *to == "" {
		return usageError("path -from X,Y,Z -to X,Y,Z <file.brep>")
	}
	if *tick <= 0 {
		return fmt.Errorf("tick must be positive")
	}

	start, err := parseVec3(*from)
	if err != nil {
		return err
	}
	dest, err := parseVec3(*to)
	if err != nil {
		return err
	}

	wm, err := loadMap(fs.Arg(0))
	if err != nil {
		return err
	}
	agent := wm.Spawn(start)
	if agent == nil {
		return fmt.Errorf("%s has no faces", fs.Arg(0))
	}

	mc := world.NewMovementController(wm.PathFinder, agent, cfg.Navmesh.AgentSpeed, navOptions(cfg))
	path := mc.MoveToWorld(dest)
	if path == nil {
		return fmt.Errorf("no path from %s to %s", *from, *to)
	}

	fmt.Printf("Faces: ")
	for i, f := range path {
		if i > 0 {
			fmt.Print(" -> ")
		}
		fmt.Print(f.Index())
	}
	fmt.Println()

	// Bound the simulation by the straight waypoint distance at agent speed
	budget := float32(0)
	prev := start
	for _, w := range mc.Waypoints() {
		budget += w.Distance(prev)
		prev = w
	}
	maxTicks := int(budget/cfg.Navmesh.AgentSpeed*1000)/(*tick) + 2

	ticks := 0
	for ; ticks < maxTicks && mc.IsFollowingPath; ticks++ {
		if err := mc.Update(float32(*tick)); err != nil {
			return err
		}
	}

	fmt.Printf("Ticks: %d\n", ticks)
	fmt.Printf("End:   %s on face %d\n", formatVec3(agent.Position), agent.Face.Index())
	if mc.Blocked {
		fmt.Println("Agent blocked by the mesh boundary")
	}
	return nil
}

func cmdPick(args []string) error {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	origin := fs.String("origin", "", "Ray origin X,Y,Z")
	dir := fs.String("dir", "0,-1,0", "Ray direction X,Y,Z")
	if _, err := setup(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 || *origin == "" {
		return usageError("pick -origin X,Y,Z [-dir X,Y,Z] <file.brep>")
	}

	o, err := parseVec3(*origin)
	if err != nil {
		return err
	}
	d, err := parseVec3(*dir)
	if err != nil {
		return err
	}
	if d.LengthSq() == 0 {
		return fmt.Errorf("ray direction must not be zero")
	}

	file, err := formats.ParseBrepFile(fs.Arg(0))
	if err != nil {
		return err
	}

	hit, ok, err := picking.PickFace(file.Mesh, picking.NewRay(o, d))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("No hit")
		return nil
	}
	fmt.Printf("Face:     %d\n", hit.Face.Index())
	fmt.Printf("Point:    %s\n", formatVec3(hit.Point))
	fmt.Printf("Distance: %.4f\n", hit.Distance)
	return nil
}

func cmdGen(args []string) error {
	if len(args) < 1 {
		return usageError("gen box|cylinder|grid [options] <out.brep>")
	}

	fs := flag.NewFlagSet("gen "+args[0], flag.ExitOnError)
	size := fs.String("size", "1,1,1", "Box size X,Y,Z")
	height := fs.Float64("height", 1, "Cylinder height")
	radius := fs.Float64("radius", 0.5, "Cylinder radius")
	width := fs.Int("width", 4, "Grid width in cells")
	depth := fs.Int("depth", 4, "Grid depth in cells")
	cellSize := fs.Float64("cell-size", 1, "Grid cell size")
	blocked := fs.String("blocked", "", "Blocked grid cells as X,Z;X,Z")
	name := fs.String("name", "", "Mesh name stored in the file")
	cfg, err := setup(fs, args[1:])
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("gen " + args[0] + " [options] <out.brep>")
	}

	opts := procgen.Options{Cells: cfg.Procgen.MeshCells, WeldEpsilon: cfg.Procgen.WeldEpsilon}

	var m *brep.Mesh
	switch args[0] {
	case "box":
		var s math.Vec3
		if s, err = parseVec3(*size); err != nil {
			return err
		}
		m, err = procgen.Box(float64(s.X), float64(s.Y), float64(s.Z), opts)
	case "cylinder":
		m, err = procgen.Cylinder(*height, *radius, opts)
	case "grid":
		h := terrain.NewHeightfield(*width, *depth, float32(*cellSize))
		if *blocked != "" {
			for _, cell := range strings.Split(*blocked, ";") {
				var x, z int
				if _, err := fmt.Sscanf(cell, "%d,%d", &x, &z); err != nil {
					return fmt.Errorf("invalid blocked cell %q: %w", cell, err)
				}
				if !h.IsCellWalkable(x, z) {
					return fmt.Errorf("blocked cell %q outside the grid", cell)
				}
				h.SetBlocked(x, z, true)
			}
		}
		m, err = terrain.BuildNavmesh(h)
	default:
		return fmt.Errorf("unknown generator %q", args[0])
	}
	if err != nil {
		return err
	}

	meshName := *name
	if meshName == "" {
		meshName = args[0]
	}
	if err := formats.EncodeBrepFile(fs.Arg(0), meshName, m); err != nil {
		return err
	}
	logger.Info("generated mesh",
		zap.String("kind", args[0]),
		zap.String("path", fs.Arg(0)),
		zap.Int("vertices", m.Vertices().Len()),
		zap.Int("faces", m.Faces().Len()))
	return nil
}

func cmdModel(args []string) error {
	fs := flag.NewFlagSet("model", flag.ExitOnError)
	reverse := fs.Bool("reverse", false, "Reverse triangle winding")
	smooth := fs.Bool("smooth", false, "Smooth normals across shared positions")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("model [-reverse] [-smooth] <file.brep>")
	}

	file, err := formats.ParseBrepFile(fs.Arg(0))
	if err != nil {
		return err
	}

	mesh, err := model.BuildMesh(file.Mesh, model.BuildOptions{
		ReverseWinding: *reverse || cfg.Model.ReverseWinding,
		SmoothNormals:  *smooth,
	})
	if err != nil {
		return err
	}
	if len(mesh.Indices) == 0 {
		fmt.Printf("%s: no faces\n", fs.Arg(0))
		return nil
	}

	c := mesh.Bounds.Center()
	fmt.Printf("Vertices:  %d\n", len(mesh.Vertices))
	fmt.Printf("Triangles: %d\n", len(mesh.Indices)/3)
	fmt.Printf("Bounds:    [%.3f %.3f %.3f] - [%.3f %.3f %.3f]\n",
		mesh.Bounds.Min[0], mesh.Bounds.Min[1], mesh.Bounds.Min[2],
		mesh.Bounds.Max[0], mesh.Bounds.Max[1], mesh.Bounds.Max[2])
	fmt.Printf("Center:    [%.3f %.3f %.3f]\n", c[0], c[1], c[2])
	fmt.Println("Groups:")
	for _, g := range mesh.Groups {
		fmt.Printf("  material %-3d %d triangles\n", g.Material, g.IndexCount/3)
	}
	return nil
}

func loadMap(path string) (*world.Map, error) {
	mgr := world.NewManager()
	if err := mgr.LoadMap(path); err != nil {
		return nil, err
	}
	return mgr.Current(), nil
}

func navOptions(cfg *config.Config) navmesh.Options {
	return navmesh.Options{MaxSteps: cfg.Navmesh.MaxSteps, Epsilon: cfg.Navmesh.Epsilon}
}

func parseVec3(s string) (math.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math.Vec3{}, fmt.Errorf("invalid point %q: want X,Y,Z", s)
	}
	var c [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("invalid point %q: %w", s, err)
		}
		c[i] = float32(f)
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

func formatVec3(v math.Vec3) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}

func describeFeature(f brep.Feature) string {
	switch f := f.(type) {
	case *brep.Vertex:
		return fmt.Sprintf("vertex %d", f.Index())
	case *brep.Edge:
		ends := f.Vertices()
		return fmt.Sprintf("edge %d (%d-%d)", f.Index(), ends[0].Index(), ends[1].Index())
	case *brep.Face:
		return fmt.Sprintf("face %d", f.Index())
	default:
		return "none"
	}
}
