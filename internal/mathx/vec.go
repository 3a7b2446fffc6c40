// Package mathx holds the small amount of linear algebra that crosses the
// wire: 3D vectors for positions/velocities and quaternions for rotations.
package mathx

import "math"

// Vec3 is a 3D vector. +Y is up, +Z is forward, +X is right.
type Vec3 struct {
	X, Y, Z float32
}

func V(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

var (
	Forward = Vec3{Z: 1}
	Back    = Vec3{Z: -1}
	Left    = Vec3{X: -1}
	Right   = Vec3{X: 1}
	Up      = Vec3{Y: 1}
	Down    = Vec3{Y: -1}
)

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Norm() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalized returns the unit vector in v's direction, or the zero vector
// if v has no length.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

func (v Vec3) IsZero() bool {
	return v == Vec3{}
}

// Clamp limits each component of v to [min, max] componentwise.
func (v Vec3) Clamp(min, max Vec3) Vec3 {
	return Vec3{
		X: clampf(v.X, min.X, max.X),
		Y: clampf(v.Y, min.Y, max.Y),
		Z: clampf(v.Z, min.Z, max.Z),
	}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
