package mathx

import "testing"

func approx(t *testing.T, got, want Vec3, what string) {
	t.Helper()
	if got.Sub(want).Norm() > 1e-5 {
		t.Fatalf("%s = %+v, want %+v", what, got, want)
	}
}

func TestIdentityRotateIsNoop(t *testing.T) {
	v := V(1, 2, 3)
	approx(t, QuatIdentity().Rotate(v), v, "identity rotation")
}

func TestYawTurnsForwardToRight(t *testing.T) {
	q := QuatYawPitch(90, 0)
	approx(t, q.Rotate(Forward), Right, "yaw 90")
	approx(t, q.Rotate(Right), Back, "yaw 90 of right")
}

func TestPitchTiltsForwardDown(t *testing.T) {
	q := QuatYawPitch(0, 90)
	approx(t, q.Rotate(Forward), Down, "pitch 90")
}

func TestYawPitchComposes(t *testing.T) {
	// Looking 90 degrees left then 90 degrees up must point straight up
	// regardless of the yaw, since pitch turns around the yawed right axis.
	q := QuatYawPitch(-90, -90)
	approx(t, q.Rotate(Forward), Up, "yaw -90 pitch -90")
}

func TestMulAppliesRightOperandFirst(t *testing.T) {
	yaw := QuatAxisAngle(Up, Radians(90))
	pitch := QuatAxisAngle(Right, Radians(90))
	composed := pitch.Mul(yaw)
	approx(t, composed.Rotate(Forward), pitch.Rotate(yaw.Rotate(Forward)), "composition")
}

func TestNormalizedZeroVector(t *testing.T) {
	if !V(0, 0, 0).Normalized().IsZero() {
		t.Fatal("normalizing the zero vector must stay zero")
	}
	n := V(0, 3, 4).Normalized()
	approx(t, n, V(0, 0.6, 0.8), "normalized")
}

func TestClampZeroesNothingInside(t *testing.T) {
	min, max := V(-1, -1, -1), V(1, 1, 1)
	inside := V(0.5, -0.5, 0)
	if inside.Clamp(min, max) != inside {
		t.Fatal("clamping inside the box must not move the point")
	}
	approx(t, V(2, -3, 0).Clamp(min, max), V(1, -1, 0), "clamped")
}
