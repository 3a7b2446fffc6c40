package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rustcycles/rustcycles-sub000/internal/mathx"
)

func TestStepIntegratesVelocity(t *testing.T) {
	s := NewScene(DefaultArena())
	h := s.AddBody(mathx.V(0, 5, 0))
	s.Body(h).Vel = mathx.V(6, 0, 0)

	s.Step(0.5)

	b := s.Body(h)
	if b.Pos.X != 3 {
		t.Fatalf("pos.X = %v, want 3", b.Pos.X)
	}
	if b.Vel.X >= 6 {
		t.Fatalf("drag not applied: vel.X = %v", b.Vel.X)
	}
}

func TestStepClampsToArenaBounds(t *testing.T) {
	arena := DefaultArena()
	s := NewScene(arena)
	h := s.AddBody(mathx.V(0, 1, 0))
	s.Body(h).Vel = mathx.V(0, -100, 0)

	s.Step(1)

	b := s.Body(h)
	if b.Pos.Y != arena.Min.Y {
		t.Fatalf("pos.Y = %v, want floor %v", b.Pos.Y, arena.Min.Y)
	}
	if b.Vel.Y != 0 {
		t.Fatalf("vel.Y = %v, want 0 after hitting the floor", b.Vel.Y)
	}
}

func TestRemovedBodyLookupFails(t *testing.T) {
	s := NewScene(DefaultArena())
	h := s.AddBody(mathx.V(0, 0, 0))
	s.RemoveBody(h)
	if s.Body(h) != nil {
		t.Fatal("stale body handle resolved after removal")
	}
}

func TestLoadArena(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	data := `name: test-arena
bounds:
  min: {x: -10, y: 0, z: -10}
  max: {x: 10, y: 20, z: 10}
spawn_points:
  - {x: -1, y: 5, z: 0}
  - {x: 1, y: 5, z: 0}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := LoadArena(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if a.Name != "test-arena" || len(a.SpawnPoints) != 2 {
		t.Fatalf("unexpected arena: %+v", a)
	}
	if a.SpawnPoint(2) != (mathx.V(-1, 5, 0)) {
		t.Fatalf("spawn points should cycle, got %v", a.SpawnPoint(2))
	}
	if a.Max != (mathx.V(10, 20, 10)) {
		t.Fatalf("bounds max = %v", a.Max)
	}
}
