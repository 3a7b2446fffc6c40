// Package sim is the minimal physics collaborator the netcode talks to.
// It owns rigid bodies with just the fields that cross the wire: position,
// rotation and linear velocity. The game loop writes accelerations before
// the step and reads transforms after it; nothing here calls back out.
package sim

import (
	"github.com/rustcycles/rustcycles-sub000/internal/mathx"
	"github.com/rustcycles/rustcycles-sub000/internal/pool"
)

// Body is one rigid body in the scene.
type Body struct {
	Pos mathx.Vec3
	Rot mathx.Quat
	Vel mathx.Vec3
}

// BodyHandle references a body in a Scene.
type BodyHandle = pool.Handle[Body]

// Scene holds all simulated bodies of one process.
type Scene struct {
	bodies pool.Pool[Body]
	arena  *Arena
	drag   float32
}

func NewScene(arena *Arena) *Scene {
	return &Scene{
		arena: arena,
		drag:  0.98,
	}
}

func (s *Scene) Arena() *Arena {
	return s.arena
}

// AddBody creates a body at rest at the given position.
func (s *Scene) AddBody(pos mathx.Vec3) BodyHandle {
	return s.bodies.Spawn(Body{Pos: pos, Rot: mathx.QuatIdentity()})
}

// Body returns the body for a handle, or nil if the handle is stale.
func (s *Scene) Body(h BodyHandle) *Body {
	b, err := s.bodies.Get(h)
	if err != nil {
		return nil
	}
	return b
}

// RemoveBody frees a body. Removing an already freed body is a no-op.
func (s *Scene) RemoveBody(h BodyHandle) {
	s.bodies.Free(h) //nolint:errcheck // stale handle on double-remove is fine
}

// Step advances every body one fixed timestep: integrate velocity, apply
// drag, keep bodies inside the arena. Velocity is zeroed along any axis that
// hits a bound so bodies rest on the floor instead of jittering.
func (s *Scene) Step(dt float32) {
	s.bodies.Each(func(_ BodyHandle, b *Body) {
		b.Pos = b.Pos.Add(b.Vel.Scale(dt))
		b.Vel = b.Vel.Scale(s.drag)

		clamped := b.Pos.Clamp(s.arena.Min, s.arena.Max)
		if clamped.X != b.Pos.X {
			b.Vel.X = 0
		}
		if clamped.Y != b.Pos.Y {
			b.Vel.Y = 0
		}
		if clamped.Z != b.Pos.Z {
			b.Vel.Z = 0
		}
		b.Pos = clamped
	})
}
