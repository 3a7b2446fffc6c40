package mathx

import "math"

// Quat is a rotation quaternion. The zero value is not a valid rotation,
// use QuatIdentity for "no rotation".
type Quat struct {
	X, Y, Z, W float32
}

func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatAxisAngle builds a rotation of angle radians around the given axis.
// The axis must be normalized.
func QuatAxisAngle(axis Vec3, angle float32) Quat {
	half := float64(angle) / 2
	s := float32(math.Sin(half))
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: float32(math.Cos(half)),
	}
}

// QuatYawPitch builds a look rotation from yaw then pitch, both in degrees.
// Yaw turns around the up axis, pitch around the resulting right axis.
func QuatYawPitch(yawDeg, pitchDeg float32) Quat {
	yaw := QuatAxisAngle(Up, Radians(yawDeg))
	pitchAxis := yaw.Rotate(Right).Normalized()
	pitch := QuatAxisAngle(pitchAxis, Radians(pitchDeg))
	return pitch.Mul(yaw)
}

func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Rotate applies the rotation to a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v' = v + 2w(u x v) + 2(u x (u x v)) where u is the vector part
	u := Vec3{q.X, q.Y, q.Z}
	c1 := cross(u, v)
	c2 := cross(u, c1)
	return v.Add(c1.Scale(2 * q.W)).Add(c2.Scale(2))
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func Radians(deg float32) float32 {
	return deg * math.Pi / 180
}
