package game

import (
	"fmt"

	"github.com/rustcycles/rustcycles-sub000/internal/debug"
	"github.com/rustcycles/rustcycles-sub000/internal/mathx"
	"github.com/rustcycles/rustcycles-sub000/internal/pool"
	"github.com/rustcycles/rustcycles-sub000/internal/sim"
)

const (
	// TickDt is the fixed gamelogic timestep in seconds.
	TickDt = 1.0 / 60.0

	wheelAccel      = 20.0
	projectileSpeed = 50.0
	projectileLife  = 3.0
	fireCooldown    = 0.2
)

// GameState is all data needed to run the gamelogic of one process.
// It is owned exclusively by that process; indices, not handles, cross the
// network.
type GameState struct {
	// GameTime is this gamelogic frame's time in seconds. It advances in
	// fixed steps and does not have to match wall-clock time.
	GameTime     float32
	GameTimePrev float32
	FrameNumber  uint32

	Players     pool.Pool[Player]
	Cycles      pool.Pool[Cycle]
	Projectiles pool.Pool[Projectile]

	cyclesSpawned int
}

func NewGameState() *GameState {
	return &GameState{
		// Avoids division by zero in the first frame's delta time.
		GameTimePrev: -1,
	}
}

// SpawnCycle creates a cycle for a player, places its body at an arena spawn
// point and links it from the player. atIndex mirrors a server-chosen slot
// on the client; pass nil on the server to let the pool assign one.
func (gs *GameState) SpawnCycle(scene *sim.Scene, playerHandle pool.Handle[Player], atIndex *uint32) (pool.Handle[Cycle], error) {
	player, err := gs.Players.Get(playerHandle)
	if err != nil {
		return pool.Handle[Cycle]{}, fmt.Errorf("spawn cycle: %w", err)
	}

	body := scene.AddBody(scene.Arena().SpawnPoint(gs.cyclesSpawned))
	gs.cyclesSpawned++

	cycle := Cycle{Player: playerHandle, Body: body}
	var cycleHandle pool.Handle[Cycle]
	if atIndex != nil {
		cycleHandle, err = gs.Cycles.SpawnAt(*atIndex, cycle)
		if err != nil {
			scene.RemoveBody(body)
			return pool.Handle[Cycle]{}, fmt.Errorf("spawn cycle at %d: %w", *atIndex, err)
		}
	} else {
		cycleHandle = gs.Cycles.Spawn(cycle)
	}

	player.Cycle = cycleHandle
	player.HasCycle = true
	return cycleHandle, nil
}

// FreeCycle removes a player's cycle and its body. It is the DespawnCycle
// counterpart of SpawnCycle.
func (gs *GameState) FreeCycle(scene *sim.Scene, cycleHandle pool.Handle[Cycle]) error {
	cycle, err := gs.Cycles.Free(cycleHandle)
	if err != nil {
		return fmt.Errorf("free cycle: %w", err)
	}
	scene.RemoveBody(cycle.Body)
	if player, err := gs.Players.Get(cycle.Player); err == nil {
		player.HasCycle = false
	}
	return nil
}

// FreePlayer removes a player and everything it owns.
func (gs *GameState) FreePlayer(scene *sim.Scene, playerHandle pool.Handle[Player]) error {
	player, err := gs.Players.Free(playerHandle)
	if err != nil {
		return fmt.Errorf("free player: %w", err)
	}
	if player.HasCycle {
		if err := gs.FreeCycle(scene, player.Cycle); err != nil {
			return err
		}
	}
	return nil
}

// TickBeforePhysics runs one gamelogic step: cycle steering from the owning
// player's input, projectile firing, flight and expiry. Both sides run it;
// on the client the results are overwritten by the next authoritative update
// so only the server's outcome is ever visible for long.
func (gs *GameState) TickBeforePhysics(scene *sim.Scene, dbg *debug.Context, dt float32) {
	gs.Cycles.Each(func(_ pool.Handle[Cycle], cycle *Cycle) {
		player, err := gs.Players.Get(cycle.Player)
		if err != nil {
			return
		}
		body := scene.Body(cycle.Body)
		if body == nil {
			return
		}

		if player.State == Playing {
			forward := body.Rot.Rotate(mathx.Forward)
			left := body.Rot.Rotate(mathx.Left)

			var accel mathx.Vec3
			in := player.Input
			if in.Forward {
				accel = accel.Add(forward.Scale(dt * wheelAccel))
			}
			if in.Backward {
				accel = accel.Sub(forward.Scale(dt * wheelAccel))
			}
			if in.Left {
				accel = accel.Add(left.Scale(dt * wheelAccel))
			}
			if in.Right {
				accel = accel.Sub(left.Scale(dt * wheelAccel))
			}
			body.Vel = body.Vel.Add(accel)

			if in.Fire1 && gs.GameTime-cycle.TimeLastFired >= fireCooldown {
				cycle.TimeLastFired = gs.GameTime
				gs.Projectiles.Spawn(Projectile{
					Player:    cycle.Player,
					Pos:       body.Pos,
					Vel:       forward.Scale(projectileSpeed),
					TimeFired: gs.GameTime,
				})
			}
		}
	})

	var expired []pool.Handle[Projectile]
	gs.Projectiles.Each(func(h pool.Handle[Projectile], proj *Projectile) {
		proj.Pos = proj.Pos.Add(proj.Vel.Scale(dt))
		if gs.GameTime-proj.TimeFired > projectileLife {
			expired = append(expired, h)
			return
		}
		step := proj.Vel.Normalized()
		dbg.Arrow(proj.Pos.Sub(step), step, 0, debug.Yellow)
	})
	for _, h := range expired {
		gs.Projectiles.Free(h) //nolint:errcheck // handle is live, collected above
	}

	dbg.Textf("projectiles: %d", gs.Projectiles.Len())
}
