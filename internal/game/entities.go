// Package game holds the state shared in meaning (never in memory) between
// client and server: entity definitions, the per-process GameState and the
// gamelogic that runs on both sides. The two processes each own an
// independent copy reconciled only through messages.
package game

import (
	"github.com/rustcycles/rustcycles-sub000/internal/mathx"
	"github.com/rustcycles/rustcycles-sub000/internal/pool"
	"github.com/rustcycles/rustcycles-sub000/internal/sim"
)

// Input is the button state sent from client to server every tick.
// Look angles are intentionally not part of it: aim stays client-side.
type Input struct {
	Fire1    bool
	Fire2    bool
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
}

// PlayerState says how a connected player participates in the game.
type PlayerState uint8

const (
	// Observing is a freely floating camera not bound to any cycle.
	Observing PlayerState = iota
	// Spectating watches another player's point of view.
	Spectating
	// Playing controls a cycle.
	Playing
)

func (s PlayerState) String() string {
	switch s {
	case Observing:
		return "observing"
	case Spectating:
		return "spectating"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Player is a client connected to a server. Created on accept, destroyed on
// disconnect.
type Player struct {
	Name  string
	State PlayerState
	// Spectatee is the watched player, valid only when State is Spectating.
	Spectatee pool.Handle[Player]
	Input     Input
	// Cycle is the player's vehicle, valid only when HasCycle is set.
	Cycle    pool.Handle[Cycle]
	HasCycle bool
}

func NewPlayer(name string) Player {
	return Player{Name: name, State: Observing}
}

// Cycle is a controllable vehicle entity.
type Cycle struct {
	Player pool.Handle[Player]
	Body   sim.BodyHandle
	// TimeLastFired throttles projectile spawning.
	TimeLastFired float32
}

// Projectile is an in-flight shot, simulated server-side.
type Projectile struct {
	Player    pool.Handle[Player]
	Pos       mathx.Vec3
	Vel       mathx.Vec3
	TimeFired float32
}
