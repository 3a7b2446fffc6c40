package game

import (
	"testing"

	"github.com/rustcycles/rustcycles-sub000/internal/debug"
	"github.com/rustcycles/rustcycles-sub000/internal/sim"
)

func newTestState() (*GameState, *sim.Scene) {
	return NewGameState(), sim.NewScene(sim.DefaultArena())
}

func TestSpawnCycleLinksPlayer(t *testing.T) {
	gs, scene := newTestState()
	ph := gs.Players.Spawn(NewPlayer("a"))

	ch, err := gs.SpawnCycle(scene, ph, nil)
	if err != nil {
		t.Fatalf("spawn cycle: %v", err)
	}

	player, _ := gs.Players.Get(ph)
	if !player.HasCycle || player.Cycle != ch {
		t.Fatalf("player not linked to cycle: %+v", player)
	}
	cycle, err := gs.Cycles.Get(ch)
	if err != nil {
		t.Fatalf("get cycle: %v", err)
	}
	if scene.Body(cycle.Body) == nil {
		t.Fatal("cycle has no body in the scene")
	}
}

func TestSpawnCycleAtMirroredIndex(t *testing.T) {
	gs, scene := newTestState()
	ph := gs.Players.Spawn(NewPlayer("a"))

	idx := uint32(4)
	ch, err := gs.SpawnCycle(scene, ph, &idx)
	if err != nil {
		t.Fatalf("spawn cycle at: %v", err)
	}
	if ch.Index() != 4 {
		t.Fatalf("cycle index = %d, want 4", ch.Index())
	}

	// Mirroring the same index twice is a protocol-level bug and must fail.
	if _, err := gs.SpawnCycle(scene, ph, &idx); err == nil {
		t.Fatal("expected error spawning at occupied index")
	}
}

func TestFreePlayerFreesOwnedCycle(t *testing.T) {
	gs, scene := newTestState()
	ph := gs.Players.Spawn(NewPlayer("a"))
	ch, err := gs.SpawnCycle(scene, ph, nil)
	if err != nil {
		t.Fatalf("spawn cycle: %v", err)
	}

	if err := gs.FreePlayer(scene, ph); err != nil {
		t.Fatalf("free player: %v", err)
	}
	if gs.Players.Len() != 0 || gs.Cycles.Len() != 0 {
		t.Fatalf("pools not empty: players=%d cycles=%d", gs.Players.Len(), gs.Cycles.Len())
	}
	if _, err := gs.Cycles.Get(ch); err == nil {
		t.Fatal("cycle handle still resolves after free")
	}
}

func TestSteeringAcceleratesPlayingCycleOnly(t *testing.T) {
	gs, scene := newTestState()
	dbg := debug.NewContext("sv")

	ph := gs.Players.Spawn(NewPlayer("a"))
	ch, _ := gs.SpawnCycle(scene, ph, nil)
	player, _ := gs.Players.Get(ph)
	player.Input.Forward = true

	// Observing: input must not move the cycle.
	gs.TickBeforePhysics(scene, dbg, TickDt)
	cycle, _ := gs.Cycles.Get(ch)
	if !scene.Body(cycle.Body).Vel.IsZero() {
		t.Fatal("observing player's cycle accelerated")
	}

	player.State = Playing
	gs.TickBeforePhysics(scene, dbg, TickDt)
	if scene.Body(cycle.Body).Vel.IsZero() {
		t.Fatal("playing player's cycle did not accelerate")
	}
}

func TestProjectileFireAndExpiry(t *testing.T) {
	gs, scene := newTestState()
	dbg := debug.NewContext("sv")

	ph := gs.Players.Spawn(NewPlayer("a"))
	gs.SpawnCycle(scene, ph, nil)
	player, _ := gs.Players.Get(ph)
	player.State = Playing
	player.Input.Fire1 = true

	gs.GameTime = 1 // past the initial cooldown window
	gs.TickBeforePhysics(scene, dbg, TickDt)
	if gs.Projectiles.Len() != 1 {
		t.Fatalf("projectiles = %d, want 1", gs.Projectiles.Len())
	}

	// Holding fire within the cooldown must not spawn another.
	gs.GameTime += TickDt
	gs.TickBeforePhysics(scene, dbg, TickDt)
	if gs.Projectiles.Len() != 1 {
		t.Fatalf("cooldown ignored: projectiles = %d", gs.Projectiles.Len())
	}

	player.Input.Fire1 = false
	gs.GameTime += 10 // well past projectile lifetime
	gs.TickBeforePhysics(scene, dbg, TickDt)
	if gs.Projectiles.Len() != 0 {
		t.Fatalf("projectiles not expired: %d", gs.Projectiles.Len())
	}
}
