package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	return quatFromMgl(mgl32.QuatRotate(angle, axis.Mgl()))
}

// QuatBetween returns the shortest-arc rotation taking direction from onto direction to.
// Neither vector needs to be normalized. Antiparallel inputs rotate half a turn about an
// arbitrary perpendicular axis.
func QuatBetween(from, to Vec3) Quat {
	f := from.Normalize()
	t := to.Normalize()
	if f == (Vec3{}) || t == (Vec3{}) {
		return QuatIdentity()
	}
	return quatFromMgl(mgl32.QuatBetweenVectors(f.Mgl(), t.Mgl()))
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Mul multiplies two quaternions (combines rotations, other applied first).
func (q Quat) Mul(other Quat) Quat {
	return quatFromMgl(q.mgl().Mul(other.mgl()))
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	return Vec3FromMgl(q.mgl().Rotate(v.Mgl()))
}

func (q Quat) mgl() mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}
}

func quatFromMgl(q mgl32.Quat) Quat {
	return Quat{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}
