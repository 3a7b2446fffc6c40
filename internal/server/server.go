// Package server runs the authoritative side of the game: it owns the only
// gamelogic state that matters, accepts clients, applies their inputs and
// broadcasts what actually happened.
package server

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustcycles/rustcycles-sub000/internal/config"
	"github.com/rustcycles/rustcycles-sub000/internal/debug"
	"github.com/rustcycles/rustcycles-sub000/internal/game"
	gonet "github.com/rustcycles/rustcycles-sub000/internal/net"
	"github.com/rustcycles/rustcycles-sub000/internal/pool"
	"github.com/rustcycles/rustcycles-sub000/internal/protocol"
	"github.com/rustcycles/rustcycles-sub000/internal/sim"
)

// RemoteClient is the server's view of one connected client: the session
// carrying its bytes and the player entity it controls.
type RemoteClient struct {
	sess   *gonet.Session
	player pool.Handle[game.Player]
}

// Server is the authoritative game process. All fields are owned by the game
// loop goroutine; the network package's session goroutines only ever touch
// the channels.
type Server struct {
	cfg *config.Config
	log *zap.Logger

	netServer *gonet.Server
	gs        *game.GameState
	scene     *sim.Scene
	dbg       *debug.Context

	clients pool.Pool[RemoteClient]
}

// New binds the listener and starts accepting connections. Accepted sessions
// queue up until the game loop picks them up in Tick.
func New(cfg *config.Config, arena *sim.Arena, log *zap.Logger) (*Server, error) {
	netServer, err := gonet.NewServer(
		cfg.Server.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		cfg.Network.WriteTimeout.Duration,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	return &Server{
		cfg:       cfg,
		log:       log,
		netServer: netServer,
		gs:        game.NewGameState(),
		scene:     sim.NewScene(arena),
		dbg:       debug.NewContext("server"),
	}, nil
}

// Addr returns the bound listen address, useful when the config asked for
// port 0.
func (s *Server) Addr() string {
	return s.netServer.Addr().String()
}

// Run drives Tick from a wall-clock ticker until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Network.TickRate.Duration)
	defer ticker.Stop()

	s.log.Info("server running",
		zap.String("addr", s.Addr()),
		zap.Duration("tick", s.cfg.Network.TickRate.Duration),
	)

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.Shutdown()
			return nil
		case <-ticker.C:
			s.Tick(float32(time.Since(start).Seconds()))
		}
	}
}

// Tick runs one iteration of the server loop: pick up new connections, apply
// client messages, drop dead connections, then advance gamelogic in fixed
// steps until it catches up with the target game time. Each gamelogic frame
// ends by broadcasting the authoritative state.
func (s *Server) Tick(gameTimeTarget float32) {
	s.acceptNewConnections()
	s.receiveMessages()
	s.removeDisconnected()

	for s.gs.GameTime+game.TickDt < gameTimeTarget {
		s.gs.GameTimePrev = s.gs.GameTime
		s.gs.GameTime += game.TickDt
		s.gs.FrameNumber++

		s.dbg.Textf("players: %d", s.gs.Players.Len())
		s.gs.TickBeforePhysics(s.scene, s.dbg, game.TickDt)
		s.scene.Step(game.TickDt)

		s.sendUpdate()
	}

	s.clients.Each(func(_ pool.Handle[RemoteClient], c *RemoteClient) {
		c.sess.FlushOutput()
	})
}

// Shutdown stops the listener and closes all client connections.
func (s *Server) Shutdown() {
	s.netServer.Shutdown()
	s.clients.Each(func(_ pool.Handle[RemoteClient], c *RemoteClient) {
		c.sess.Close()
	})
}

func (s *Server) acceptNewConnections() {
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.handleAccept(sess)
		default:
			return
		}
	}
}

// handleAccept wires a fresh session into the game. Ordering matters: the
// AddPlayer broadcast goes out before the client is registered so the new
// client never hears about itself twice, and Init is queued before anything
// else so it is guaranteed to be the first message the client receives.
func (s *Server) handleAccept(sess *gonet.Session) {
	playerHandle := s.gs.Players.Spawn(game.NewPlayer(""))
	player, _ := s.gs.Players.Get(playerHandle)
	player.Name = fmt.Sprintf("player %d", playerHandle.Index())

	s.broadcast(protocol.AddPlayer{
		PlayerIndex: playerHandle.Index(),
		Name:        player.Name,
	})

	s.clients.Spawn(RemoteClient{sess: sess, player: playerHandle})
	sess.Send(protocol.EncodeServer(s.buildInit(playerHandle)))

	cycleHandle, err := s.gs.SpawnCycle(s.scene, playerHandle, nil)
	if err != nil {
		// Spawning for a player that was just created can't fail.
		s.log.Error("spawn cycle on accept", zap.Error(err))
		return
	}
	s.broadcast(protocol.SpawnCycle{PlayerCycle: protocol.PlayerCycle{
		PlayerIndex: playerHandle.Index(),
		CycleIndex:  cycleHandle.Index(),
	}})

	s.log.Info("player connected",
		zap.Uint64("session", sess.ID),
		zap.String("player", player.Name),
	)
}

// buildInit snapshots everything a new client needs to mirror the server's
// pools before any incremental message arrives.
func (s *Server) buildInit(local pool.Handle[game.Player]) protocol.Init {
	init := protocol.Init{LocalPlayerIndex: local.Index()}
	s.gs.Players.Each(func(h pool.Handle[game.Player], p *game.Player) {
		init.PlayerIndices = append(init.PlayerIndices, h.Index())
		if p.HasCycle {
			init.PlayerCycles = append(init.PlayerCycles, protocol.PlayerCycle{
				PlayerIndex: h.Index(),
				CycleIndex:  p.Cycle.Index(),
			})
		}
	})
	s.gs.Projectiles.Each(func(h pool.Handle[game.Projectile], proj *game.Projectile) {
		init.PlayerProjectiles = append(init.PlayerProjectiles, protocol.PlayerProjectile{
			PlayerIndex:     proj.Player.Index(),
			ProjectileIndex: h.Index(),
		})
	})
	return init
}

// receiveMessages drains every client's input queue, capped per tick so one
// flooding connection cannot starve the rest. A client that sends garbage
// only loses its own connection.
func (s *Server) receiveMessages() {
	s.clients.Each(func(_ pool.Handle[RemoteClient], c *RemoteClient) {
		for i := 0; i < s.cfg.Network.MaxMsgsPerTick; i++ {
			select {
			case payload := <-c.sess.InQueue:
				if err := s.dispatch(c, payload); err != nil {
					s.log.Warn("dropping misbehaving connection",
						zap.Uint64("session", c.sess.ID),
						zap.Error(err),
					)
					c.sess.Close()
					return
				}
			default:
				return
			}
		}
	})
}

// dispatch decodes and applies one client message. Panics in message handling
// are contained to the offending connection instead of taking down the loop.
func (s *Server) dispatch(c *RemoteClient, payload []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("message handler panicked", zap.Any("panic", rec))
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()

	msg, err := protocol.DecodeClient(payload)
	if err != nil {
		return err
	}
	player, err := s.gs.Players.Get(c.player)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case protocol.InputMessage:
		// Last write wins. Inputs are not buffered: only the most recent
		// state before a gamelogic frame has any effect.
		player.Input = m.Input
	case protocol.ChatMessage:
		s.log.Info("chat",
			zap.String("player", player.Name),
			zap.String("text", m.Text),
		)
	case protocol.JoinMessage:
		s.handleJoin(c, player)
	case protocol.ObserveMessage:
		s.handleObserve(c, player)
	}
	return nil
}

func (s *Server) handleJoin(c *RemoteClient, player *game.Player) {
	if player.State == game.Playing {
		return
	}
	player.State = game.Playing
	if !player.HasCycle {
		cycleHandle, err := s.gs.SpawnCycle(s.scene, c.player, nil)
		if err != nil {
			s.log.Error("spawn cycle on join", zap.Error(err))
			return
		}
		s.broadcast(protocol.SpawnCycle{PlayerCycle: protocol.PlayerCycle{
			PlayerIndex: c.player.Index(),
			CycleIndex:  cycleHandle.Index(),
		}})
	}
	s.broadcast(protocol.Join{PlayerIndex: c.player.Index()})
	s.log.Info("player joined", zap.String("player", player.Name))
}

func (s *Server) handleObserve(c *RemoteClient, player *game.Player) {
	if player.State == game.Observing {
		return
	}
	player.State = game.Observing
	if player.HasCycle {
		cycleIndex := player.Cycle.Index()
		if err := s.gs.FreeCycle(s.scene, player.Cycle); err != nil {
			s.log.Error("free cycle on observe", zap.Error(err))
		} else {
			s.broadcast(protocol.DespawnCycle{CycleIndex: cycleIndex})
		}
	}
	s.broadcast(protocol.Observe{PlayerIndex: c.player.Index()})
	s.log.Info("player observing", zap.String("player", player.Name))
}

// removeDisconnected frees the player of every closed session and tells the
// remaining clients. Remaining queued messages from a closed session are
// discarded; there is no player to apply them to afterwards.
func (s *Server) removeDisconnected() {
	var gone []pool.Handle[RemoteClient]
	s.clients.Each(func(h pool.Handle[RemoteClient], c *RemoteClient) {
		if c.sess.IsClosed() {
			gone = append(gone, h)
		}
	})
	for _, h := range gone {
		c, err := s.clients.Free(h)
		if err != nil {
			continue
		}
		playerIndex := c.player.Index()
		if err := s.gs.FreePlayer(s.scene, c.player); err != nil {
			s.log.Error("free player on disconnect", zap.Error(err))
		}
		s.broadcast(protocol.RemovePlayer{PlayerIndex: playerIndex})
		s.log.Info("player disconnected", zap.Uint64("session", c.sess.ID))
	}
}

// sendUpdate broadcasts the full per-frame snapshot: every player's current
// input, every cycle's physical state and the drained debug overlay queue.
func (s *Server) sendUpdate() {
	var update protocol.Update
	s.gs.Players.Each(func(h pool.Handle[game.Player], p *game.Player) {
		update.PlayerInputs = append(update.PlayerInputs, protocol.PlayerInput{
			PlayerIndex: h.Index(),
			Input:       p.Input,
		})
	})
	s.gs.Cycles.Each(func(h pool.Handle[game.Cycle], cycle *game.Cycle) {
		body := s.scene.Body(cycle.Body)
		if body == nil {
			return
		}
		update.CyclePhysics = append(update.CyclePhysics, protocol.CyclePhysics{
			CycleIndex:  h.Index(),
			Translation: body.Pos,
			Rotation:    body.Rot,
			Velocity:    body.Vel,
		})
	})
	update.DebugTexts, update.DebugShapes = s.dbg.Drain()

	s.broadcast(update)
}

// broadcast queues a message for every connected client. Encoded once,
// buffered until FlushOutput at the end of the tick.
func (s *Server) broadcast(msg protocol.ServerMessage) {
	payload := protocol.EncodeServer(msg)
	s.clients.Each(func(_ pool.Handle[RemoteClient], c *RemoteClient) {
		c.sess.Send(payload)
	})
}
