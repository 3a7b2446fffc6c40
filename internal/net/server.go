package net

import (
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Server accepts TCP connections and wraps them in Sessions. New sessions
// are handed to the game loop through a channel so the loop can pick them
// up at its own tick boundary without blocking.
type Server struct {
	listener net.Listener
	nextID   atomic.Uint64
	newConns chan *Session

	inSize       int
	outSize      int
	writeTimeout time.Duration

	closeCh chan struct{}
	log     *zap.Logger
}

func NewServer(bindAddr string, inSize, outSize int, writeTimeout time.Duration, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener:     ln,
		newConns:     make(chan *Session, 64),
		inSize:       inSize,
		outSize:      outSize,
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		log:          log,
	}, nil
}

// AcceptLoop runs in its own goroutine: accept, wrap, start I/O, hand over.
// Accept errors affect only the failed connection attempt, never the game
// loop.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.inSize, s.outSize, s.writeTimeout, s.log)
		sess.Start()

		s.log.Info("client connected", zap.Uint64("session", id), zap.String("ip", sess.IP))

		select {
		case s.newConns <- sess:
		default:
			s.log.Warn("connection queue full, rejecting new connection")
			sess.Close()
		}
	}
}

// NewSessions returns the channel of freshly accepted sessions. The game
// loop drains it non-blockingly once per tick.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
