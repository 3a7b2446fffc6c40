// Package client keeps a local mirror of the server's game state in sync
// through the message stream and predicts ahead of it between updates. The
// mirror uses the same pools, gamelogic and physics as the server; the server
// remains authoritative and its updates overwrite whatever the prediction
// produced.
package client

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustcycles/rustcycles-sub000/internal/config"
	"github.com/rustcycles/rustcycles-sub000/internal/debug"
	"github.com/rustcycles/rustcycles-sub000/internal/game"
	"github.com/rustcycles/rustcycles-sub000/internal/mathx"
	gonet "github.com/rustcycles/rustcycles-sub000/internal/net"
	"github.com/rustcycles/rustcycles-sub000/internal/pool"
	"github.com/rustcycles/rustcycles-sub000/internal/protocol"
	"github.com/rustcycles/rustcycles-sub000/internal/sim"
)

var (
	// ErrDisconnected is returned by Tick once the connection is gone.
	ErrDisconnected = errors.New("client: connection closed")
	// ErrInitOrder is returned when Init is missing where it must appear or
	// appears a second time.
	ErrInitOrder = errors.New("client: init message out of order")
)

// InputSource provides the local player's raw input for one frame. The
// rendering layer implements it; headless uses NullSource.
type InputSource interface {
	// Buttons returns the current button state.
	Buttons() game.Input
	// LookDelta returns the mouse movement since the previous frame.
	LookDelta() (dx, dy float32)
}

// NullSource is an InputSource that never presses anything.
type NullSource struct{}

func (NullSource) Buttons() game.Input           { return game.Input{} }
func (NullSource) LookDelta() (float32, float32) { return 0, 0 }

// Camera is the local point of view. Angles are in degrees and entirely
// client-side: the server never sees where a player is looking.
type Camera struct {
	Pos        mathx.Vec3
	Yaw, Pitch float32
}

// Client is the game's client process state: the synced mirror, the session
// to the server and the local-only parts (camera, debug overlay).
type Client struct {
	cfg *config.Config
	log *zap.Logger

	sess  *gonet.Session
	gs    *game.GameState
	scene *sim.Scene
	dbg   *debug.Context

	source    InputSource
	camera    Camera
	prevInput game.Input

	localPlayer pool.Handle[game.Player]
}

// Connect dials the server and blocks until the initial state snapshot has
// been received and mirrored.
func Connect(cfg *config.Config, arena *sim.Arena, source InputSource, log *zap.Logger) (*Client, error) {
	sess, err := gonet.Dial(
		cfg.Client.ConnectAddress,
		cfg.Client.ConnectRetries,
		cfg.Client.RetryDelay.Duration,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		cfg.Network.WriteTimeout.Duration,
		log,
	)
	if err != nil {
		return nil, err
	}
	return newClient(cfg, sess, arena, source, log)
}

func newClient(cfg *config.Config, sess *gonet.Session, arena *sim.Arena, source InputSource, log *zap.Logger) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		log:    log,
		sess:   sess,
		gs:     game.NewGameState(),
		scene:  sim.NewScene(arena),
		dbg:    debug.NewContext("client"),
		source: source,
	}
	if err := c.waitForInit(); err != nil {
		sess.Close()
		return nil, err
	}
	return c, nil
}

// waitForInit blocks for the server's first message. Anything other than Init
// first is a protocol violation.
func (c *Client) waitForInit() error {
	timer := time.NewTimer(c.cfg.Client.InitTimeout.Duration)
	defer timer.Stop()

	select {
	case payload := <-c.sess.InQueue:
		msg, err := protocol.DecodeServer(payload)
		if err != nil {
			return err
		}
		init, ok := msg.(protocol.Init)
		if !ok {
			return fmt.Errorf("first message is %T: %w", msg, ErrInitOrder)
		}
		return c.applyInit(init)
	case <-timer.C:
		return fmt.Errorf("no init within %s: %w", c.cfg.Client.InitTimeout, ErrDisconnected)
	}
}

// applyInit mirrors the server's pools slot for slot. Spawn order matches the
// snapshot order, which keeps derived state such as spawn point selection in
// step with the server.
func (c *Client) applyInit(init protocol.Init) error {
	for _, idx := range init.PlayerIndices {
		h, err := c.gs.Players.SpawnAt(idx, game.NewPlayer(fmt.Sprintf("player %d", idx)))
		if err != nil {
			return fmt.Errorf("mirror player %d: %w", idx, err)
		}
		if idx == init.LocalPlayerIndex {
			c.localPlayer = h
		}
	}
	if _, err := c.gs.Players.Get(c.localPlayer); err != nil {
		return fmt.Errorf("local player %d not in snapshot: %w", init.LocalPlayerIndex, ErrInitOrder)
	}
	for _, pc := range init.PlayerCycles {
		playerHandle, _, ok := c.gs.Players.AtIndex(pc.PlayerIndex)
		if !ok {
			return fmt.Errorf("mirror cycle %d: player %d: %w", pc.CycleIndex, pc.PlayerIndex, pool.ErrNotFound)
		}
		idx := pc.CycleIndex
		if _, err := c.gs.SpawnCycle(c.scene, playerHandle, &idx); err != nil {
			return err
		}
	}
	for _, pp := range init.PlayerProjectiles {
		playerHandle, _, ok := c.gs.Players.AtIndex(pp.PlayerIndex)
		if !ok {
			return fmt.Errorf("mirror projectile %d: player %d: %w", pp.ProjectileIndex, pp.PlayerIndex, pool.ErrNotFound)
		}
		// Position catches up from gamelogic; only ownership and slot matter.
		if _, err := c.gs.Projectiles.SpawnAt(pp.ProjectileIndex, game.Projectile{Player: playerHandle}); err != nil {
			return fmt.Errorf("mirror projectile %d: %w", pp.ProjectileIndex, err)
		}
	}
	c.log.Info("connected",
		zap.Uint32("local_player", init.LocalPlayerIndex),
		zap.Int("players", len(init.PlayerIndices)),
	)
	return nil
}

// Tick runs one client frame: apply everything the server sent, push the
// current input out, predict gamelogic locally, move the camera, expire debug
// overlay items.
func (c *Client) Tick(dt float32) error {
	if c.sess.IsClosed() {
		return ErrDisconnected
	}

	if err := c.receiveMessages(); err != nil {
		c.sess.Close()
		return err
	}

	input := c.source.Buttons()
	c.sess.Send(protocol.EncodeClient(protocol.InputMessage{Input: input}))
	// The local mirror gets the fresh input immediately, not the server's
	// echo of an older one: that's what makes the prediction feel current.
	if p, err := c.gs.Players.Get(c.localPlayer); err == nil {
		p.Input = input

		// Participation changes ride on button edges. Nothing is applied
		// locally; the transition happens when the server echoes it back.
		if input.Fire1 && !c.prevInput.Fire1 && p.State == game.Observing {
			c.RequestJoin()
		}
		if input.Fire2 && !c.prevInput.Fire2 && p.State == game.Playing {
			c.RequestObserve()
		}
	}
	c.prevInput = input

	c.gs.GameTimePrev = c.gs.GameTime
	c.gs.GameTime += dt
	c.gs.FrameNumber++
	c.gs.TickBeforePhysics(c.scene, c.dbg, dt)
	c.scene.Step(dt)

	c.updateCamera(dt, input)
	c.dbg.Prune(dt)
	c.sess.FlushOutput()
	return nil
}

// RequestJoin asks the server to put the local player in the game. The state
// change only happens when the server's Join message comes back.
func (c *Client) RequestJoin() {
	c.sess.Send(protocol.EncodeClient(protocol.JoinMessage{}))
}

// RequestObserve asks the server to switch the local player to observing.
func (c *Client) RequestObserve() {
	c.sess.Send(protocol.EncodeClient(protocol.ObserveMessage{}))
}

// Chat sends a chat line.
func (c *Client) Chat(text string) {
	c.sess.Send(protocol.EncodeClient(protocol.ChatMessage{Text: text}))
}

// Camera returns the current point of view for rendering.
func (c *Client) Camera() Camera {
	return c.camera
}

// Debug returns the overlay context so the renderer can draw its contents.
func (c *Client) Debug() *debug.Context {
	return c.dbg
}

// Close tears the connection down.
func (c *Client) Close() {
	c.sess.Close()
}

func (c *Client) receiveMessages() error {
	for {
		select {
		case payload := <-c.sess.InQueue:
			msg, err := protocol.DecodeServer(payload)
			if err != nil {
				return err
			}
			if err := c.apply(msg); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (c *Client) apply(msg protocol.ServerMessage) error {
	switch m := msg.(type) {
	case protocol.Init:
		return fmt.Errorf("repeated init: %w", ErrInitOrder)
	case protocol.AddPlayer:
		if _, err := c.gs.Players.SpawnAt(m.PlayerIndex, game.NewPlayer(m.Name)); err != nil {
			return fmt.Errorf("add player %d: %w", m.PlayerIndex, err)
		}
	case protocol.RemovePlayer:
		h, _, ok := c.gs.Players.AtIndex(m.PlayerIndex)
		if !ok {
			return fmt.Errorf("remove player %d: %w", m.PlayerIndex, pool.ErrNotFound)
		}
		if err := c.gs.FreePlayer(c.scene, h); err != nil {
			return err
		}
	case protocol.Observe:
		_, p, ok := c.gs.Players.AtIndex(m.PlayerIndex)
		if !ok {
			return fmt.Errorf("observe: player %d: %w", m.PlayerIndex, pool.ErrNotFound)
		}
		p.State = game.Observing
	case protocol.Spectate:
		_, p, ok := c.gs.Players.AtIndex(m.PlayerIndex)
		if !ok {
			return fmt.Errorf("spectate: player %d: %w", m.PlayerIndex, pool.ErrNotFound)
		}
		spectatee, _, ok := c.gs.Players.AtIndex(m.SpectateeIndex)
		if !ok {
			return fmt.Errorf("spectate: spectatee %d: %w", m.SpectateeIndex, pool.ErrNotFound)
		}
		p.State = game.Spectating
		p.Spectatee = spectatee
	case protocol.Join:
		_, p, ok := c.gs.Players.AtIndex(m.PlayerIndex)
		if !ok {
			return fmt.Errorf("join: player %d: %w", m.PlayerIndex, pool.ErrNotFound)
		}
		p.State = game.Playing
	case protocol.SpawnCycle:
		playerHandle, _, ok := c.gs.Players.AtIndex(m.PlayerIndex)
		if !ok {
			return fmt.Errorf("spawn cycle %d: player %d: %w", m.CycleIndex, m.PlayerIndex, pool.ErrNotFound)
		}
		idx := m.CycleIndex
		if _, err := c.gs.SpawnCycle(c.scene, playerHandle, &idx); err != nil {
			return err
		}
	case protocol.DespawnCycle:
		h, _, ok := c.gs.Cycles.AtIndex(m.CycleIndex)
		if !ok {
			return fmt.Errorf("despawn cycle %d: %w", m.CycleIndex, pool.ErrNotFound)
		}
		if err := c.gs.FreeCycle(c.scene, h); err != nil {
			return err
		}
	case protocol.Update:
		c.applyUpdate(m)
	}
	return nil
}

// applyUpdate overwrites the mirror with the authoritative snapshot. The
// local player's input is skipped: the server only echoes what this client
// already sent, possibly a few frames stale.
func (c *Client) applyUpdate(update protocol.Update) {
	for _, pi := range update.PlayerInputs {
		if pi.PlayerIndex == c.localPlayer.Index() {
			continue
		}
		if _, p, ok := c.gs.Players.AtIndex(pi.PlayerIndex); ok {
			p.Input = pi.Input
		}
	}
	for _, cp := range update.CyclePhysics {
		_, cycle, ok := c.gs.Cycles.AtIndex(cp.CycleIndex)
		if !ok {
			continue
		}
		if body := c.scene.Body(cycle.Body); body != nil {
			body.Pos = cp.Translation
			body.Rot = cp.Rotation
			body.Vel = cp.Velocity
		}
	}
	c.dbg.Merge(update.DebugTexts, update.DebugShapes)
}

// updateCamera moves the local point of view: third person behind the own or
// spectated cycle, free flight while observing. Runs every frame regardless
// of network traffic so looking around never lags behind the server.
func (c *Client) updateCamera(dt float32, input game.Input) {
	cc := c.cfg.Client

	dx, dy := c.source.LookDelta()
	c.camera.Yaw += dx * cc.MouseSensitivity
	pitch := c.camera.Pitch + dy*cc.MouseSensitivity
	if pitch < cc.PitchMin {
		pitch = cc.PitchMin
	}
	if pitch > cc.PitchMax {
		pitch = cc.PitchMax
	}
	c.camera.Pitch = pitch

	rot := mathx.QuatYawPitch(c.camera.Yaw, c.camera.Pitch)

	player, err := c.gs.Players.Get(c.localPlayer)
	if err != nil {
		return
	}
	switch player.State {
	case game.Playing:
		if pos, ok := c.thirdPersonPos(player, rot); ok {
			c.camera.Pos = pos
		}
	case game.Spectating:
		if spectatee, err := c.gs.Players.Get(player.Spectatee); err == nil {
			if pos, ok := c.thirdPersonPos(spectatee, rot); ok {
				c.camera.Pos = pos
			}
		}
	case game.Observing:
		var move mathx.Vec3
		if input.Forward {
			move = move.Add(rot.Rotate(mathx.Forward))
		}
		if input.Backward {
			move = move.Sub(rot.Rotate(mathx.Forward))
		}
		if input.Left {
			move = move.Add(rot.Rotate(mathx.Left))
		}
		if input.Right {
			move = move.Sub(rot.Rotate(mathx.Left))
		}
		if !move.IsZero() {
			c.camera.Pos = c.camera.Pos.Add(move.Normalized().Scale(cc.CameraSpeed * dt))
		}
	}
}

func (c *Client) thirdPersonPos(player *game.Player, rot mathx.Quat) (mathx.Vec3, bool) {
	if !player.HasCycle {
		return mathx.Vec3{}, false
	}
	cycle, err := c.gs.Cycles.Get(player.Cycle)
	if err != nil {
		return mathx.Vec3{}, false
	}
	body := c.scene.Body(cycle.Body)
	if body == nil {
		return mathx.Vec3{}, false
	}
	cc := c.cfg.Client
	back := rot.Rotate(mathx.Forward).Scale(cc.CameraThirdPersonBack)
	return body.Pos.Sub(back).Add(mathx.Up.Scale(cc.CameraThirdPersonUp)), true
}
