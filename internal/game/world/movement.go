package world

import (
	"github.com/Faultbox/midgard-geom/internal/engine/navmesh"
	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/math"
)

// arriveDistance is how close an agent must get to a waypoint to count as reaching it.
const arriveDistance = 1e-3

// Agent is an entity standing on a navigation mesh face.
type Agent struct {
	Face     *brep.Face
	Position math.Vec3
}

// MovementController moves an agent along a face path, one simulation tick at a time.
type MovementController struct {
	pathFinder *PathFinder
	agent      *Agent
	speed      float32 // World units per second
	options    navmesh.Options

	waypoints []math.Vec3
	index     int

	// Movement state
	IsFollowingPath bool
	// Blocked is set when the last tick stopped against the mesh boundary.
	Blocked bool
}

// NewMovementController creates a new movement controller.
func NewMovementController(pathFinder *PathFinder, agent *Agent, speed float32, opts navmesh.Options) *MovementController {
	return &MovementController{
		pathFinder: pathFinder,
		agent:      agent,
		speed:      speed,
		options:    opts,
	}
}

// Agent returns the controlled agent.
func (mc *MovementController) Agent() *Agent {
	return mc.agent
}

// MoveTo plans a path to dest on the goal face. Waypoints are the portal midpoints
// followed by dest. Returns the face path, or nil if the goal is unreachable.
func (mc *MovementController) MoveTo(goal *brep.Face, dest math.Vec3) []*brep.Face {
	path := mc.pathFinder.FindPath(mc.agent.Face, goal)
	if path == nil {
		return nil
	}

	mc.waypoints = append(mc.pathFinder.Portals(path), dest)
	mc.index = 0
	mc.IsFollowingPath = true
	mc.Blocked = false
	return path
}

// MoveToWorld plans a path to the face closest to dest.
func (mc *MovementController) MoveToWorld(dest math.Vec3) []*brep.Face {
	goal := mc.pathFinder.Locate(dest)
	if goal == nil {
		return nil
	}
	return mc.MoveTo(goal, dest)
}

// Update advances the agent by deltaMs milliseconds of movement toward the current
// waypoint, walking the surface with navmesh.Traverse.
func (mc *MovementController) Update(deltaMs float32) error {
	if !mc.IsFollowingPath {
		return nil
	}

	budget := mc.speed * deltaMs / 1000
	for budget > 0 && mc.index < len(mc.waypoints) {
		waypoint := mc.waypoints[mc.index]
		toWaypoint := waypoint.Sub(mc.agent.Position)
		dist := toWaypoint.Length()

		if dist <= arriveDistance {
			mc.index++
			continue
		}

		step := min(budget, dist)
		target := mc.agent.Position.Add(toWaypoint.Scale(step / dist))

		res, err := navmesh.Traverse(mc.pathFinder.mesh, mc.agent.Face, mc.agent.Position, target, mc.options)
		if err != nil {
			return err
		}
		moved := res.ClosestPoint.Distance(mc.agent.Position)
		mc.agent.Face = res.Face
		mc.agent.Position = res.ClosestPoint
		budget -= step

		if !res.ClosestPoint.ApproxEqual(res.UnfoldedTarget, arriveDistance) && !res.Capped {
			// Stopped short against a boundary
			if moved <= arriveDistance {
				mc.Blocked = true
				mc.ClearPath()
				return nil
			}
		}
	}

	if mc.index >= len(mc.waypoints) {
		mc.IsFollowingPath = false
	}
	return nil
}

// ClearPath stops the current path following.
func (mc *MovementController) ClearPath() {
	mc.waypoints = nil
	mc.index = 0
	mc.IsFollowingPath = false
}

// Waypoints returns the remaining waypoints.
func (mc *MovementController) Waypoints() []math.Vec3 {
	if mc.index >= len(mc.waypoints) {
		return nil
	}
	return mc.waypoints[mc.index:]
}
