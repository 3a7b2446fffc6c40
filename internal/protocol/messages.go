// Package protocol defines the closed set of messages exchanged between
// client and server and their binary encoding. Entities are referenced by
// bare pool indices; generations never cross the wire.
package protocol

import (
	"errors"

	"github.com/rustcycles/rustcycles-sub000/internal/debug"
	"github.com/rustcycles/rustcycles-sub000/internal/game"
	"github.com/rustcycles/rustcycles-sub000/internal/mathx"
)

// Client-to-server opcodes.
const (
	C_OPCODE_INPUT byte = iota + 1
	C_OPCODE_CHAT
	C_OPCODE_JOIN
	C_OPCODE_OBSERVE
)

// Server-to-client opcodes.
const (
	S_OPCODE_INIT byte = iota + 101
	S_OPCODE_ADD_PLAYER
	S_OPCODE_REMOVE_PLAYER
	S_OPCODE_OBSERVE
	S_OPCODE_SPECTATE
	S_OPCODE_JOIN
	S_OPCODE_SPAWN_CYCLE
	S_OPCODE_DESPAWN_CYCLE
	S_OPCODE_UPDATE
)

var (
	// ErrUnknownOpcode is returned when a payload's first byte is not a
	// known message of the expected direction.
	ErrUnknownOpcode = errors.New("protocol: unknown opcode")
	// ErrTruncated is returned when a payload ends before its fields do.
	ErrTruncated = errors.New("protocol: truncated payload")
)

// ClientMessage is a message sent from a client to the server.
type ClientMessage interface {
	isClientMessage()
}

// InputMessage carries the client's current button state, sent every tick.
// Last write wins on the server; inputs are not buffered.
type InputMessage struct {
	Input game.Input
}

type ChatMessage struct {
	Text string
}

// JoinMessage asks to switch from observing to playing.
type JoinMessage struct{}

// ObserveMessage asks to switch from playing to observing.
type ObserveMessage struct{}

func (InputMessage) isClientMessage()   {}
func (ChatMessage) isClientMessage()    {}
func (JoinMessage) isClientMessage()    {}
func (ObserveMessage) isClientMessage() {}

// ServerMessage is a message sent from the server to one or all clients.
type ServerMessage interface {
	isServerMessage()
}

// PlayerCycle pairs a player with the cycle it owns, both as pool indices.
type PlayerCycle struct {
	PlayerIndex uint32
	CycleIndex  uint32
}

// PlayerProjectile pairs a player with an in-flight projectile.
type PlayerProjectile struct {
	PlayerIndex     uint32
	ProjectileIndex uint32
}

// PlayerInput is one player's current input inside an update snapshot.
type PlayerInput struct {
	PlayerIndex uint32
	Input       game.Input
}

// CyclePhysics is one cycle's authoritative physical state.
type CyclePhysics struct {
	CycleIndex  uint32
	Translation mathx.Vec3
	Rotation    mathx.Quat
	Velocity    mathx.Vec3
}

// Init is the initial game state sent to a new client upon connecting.
// It must be the very first message a client receives, exactly once.
//
// This is intentionally separate from AddPlayer/SpawnCycle because those
// might eventually trigger additional effects such as sounds or particles.
type Init struct {
	PlayerIndices     []uint32
	LocalPlayerIndex  uint32
	PlayerCycles      []PlayerCycle
	PlayerProjectiles []PlayerProjectile
}

// AddPlayer announces a new player to everyone already connected.
type AddPlayer struct {
	PlayerIndex uint32
	Name        string
}

// RemovePlayer removes a player and everything it owns, e.g. on disconnect.
type RemovePlayer struct {
	PlayerIndex uint32
}

// Observe announces that a player switched to observer mode.
type Observe struct {
	PlayerIndex uint32
}

// Spectate announces that a player is now watching another player's POV.
type Spectate struct {
	PlayerIndex    uint32
	SpectateeIndex uint32
}

// Join announces that a player is now playing.
type Join struct {
	PlayerIndex uint32
}

// SpawnCycle spawns a new cycle for an existing player.
type SpawnCycle struct {
	PlayerCycle
}

// DespawnCycle removes a cycle, e.g. when its owner switches to observing.
type DespawnCycle struct {
	CycleIndex uint32
}

// Update is a full per-tick snapshot of every known player's input and every
// cycle's physical state, plus the server's debug overlay queue. It is never
// a delta; entities absent from it have been removed by an explicit message.
type Update struct {
	PlayerInputs []PlayerInput
	CyclePhysics []CyclePhysics
	DebugTexts   []string
	DebugShapes  []debug.Shape
}

func (Init) isServerMessage()         {}
func (AddPlayer) isServerMessage()    {}
func (RemovePlayer) isServerMessage() {}
func (Observe) isServerMessage()      {}
func (Spectate) isServerMessage()     {}
func (Join) isServerMessage()         {}
func (SpawnCycle) isServerMessage()   {}
func (DespawnCycle) isServerMessage() {}
func (Update) isServerMessage()       {}
