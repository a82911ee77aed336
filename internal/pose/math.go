package pose

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

// MoveTowards moves current towards target by at most maxDelta without overshooting.
func MoveTowards(current, target mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	d := target.Sub(current)
	dist := d.Len()
	if dist == 0 || (maxDelta >= 0 && dist <= maxDelta) {
		return target
	}
	return current.Add(d.Mul(maxDelta / dist))
}

// Lerp interpolates between a and b with t clamped to [0, 1].
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	t = Clamp01(t)
	return a.Add(b.Sub(a).Mul(t))
}

// Slerp spherically interpolates along the shortest arc with t clamped to [0, 1].
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	t = Clamp01(t)
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

// LookRotation builds a rotation whose +Z axis points along forward and whose
// +Y axis is as close to up as possible. ok is false when forward is zero or
// parallel to up; callers keep their previous rotation in that case.
func LookRotation(forward, up mgl64.Vec3) (q mgl64.Quat, ok bool) {
	if forward.Len() < epsilon || up.Len() < epsilon {
		return mgl64.QuatIdent(), false
	}
	f := forward.Normalize()
	right := up.Cross(f)
	if right.Len() < epsilon {
		return mgl64.QuatIdent(), false
	}
	right = right.Normalize()
	u := f.Cross(right)

	m := mgl64.Mat3FromCols(right, u, f)
	q = mgl64.Mat4ToQuat(m.Mat4()).Normalize()
	if !finiteQuat(q) {
		return mgl64.QuatIdent(), false
	}
	return q, true
}

// Clamp01 clamps t to [0, 1]; NaN becomes 0.
func Clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Finite reports whether every component of v is a real number.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func finiteQuat(q mgl64.Quat) bool {
	return Finite(q.V) && !math.IsNaN(q.W) && !math.IsInf(q.W, 0)
}

// EulerDegrees builds a rotation from euler angles in degrees, applied Z then X then Y.
func EulerDegrees(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(x), mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(mgl64.DegToRad(y), mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(mgl64.DegToRad(z), mgl64.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz).Normalize()
}

// QuatYaw is a rotation about +Y in degrees.
func QuatYaw(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{0, 1, 0})
}
