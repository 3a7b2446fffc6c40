package net

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Session represents a single connection, on either side of it. Network I/O
// runs in dedicated goroutines; game state is only ever touched by the game
// loop, which talks to the session through channels. An empty InQueue means
// "no data this tick", never "wait".
type Session struct {
	ID   uint64
	conn net.Conn

	// InQueue delivers decoded frame payloads to the game loop.
	InQueue chan []byte
	// OutQueue feeds the writer goroutine.
	OutQueue chan []byte

	IP string

	// outBuf holds payloads queued by Send until FlushOutput, game loop
	// goroutine only.
	outBuf [][]byte

	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, inSize, outSize int, writeTimeout time.Duration, log *zap.Logger) *Session {
	return &Session{
		ID:           id,
		conn:         conn,
		InQueue:      make(chan []byte, inSize),
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		log:          log.With(zap.Uint64("session", id)),
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a payload for sending. Nothing is written to the socket
// until FlushOutput is called at the end of the tick.
// Called only from the game loop goroutine.
func (s *Session) Send(payload []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, payload)
}

// FlushOutput drains the output buffer to OutQueue for the writer
// goroutine. Non-blocking: if OutQueue is full the peer is not keeping up
// and the session is disconnected rather than stalling the game loop.
func (s *Session) FlushOutput() {
	for _, payload := range s.outBuf {
		select {
		case s.OutQueue <- payload:
		default:
			s.log.Warn("output queue full, dropping slow connection")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close shuts the session down. Safe to call multiple times and from any
// goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
	})
}

// IsClosed reports whether the connection is gone. The game loop uses this
// as the disconnect signal after draining remaining messages.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop reads raw bytes, feeds them through the frame decoder and pushes
// complete payloads onto InQueue. Any read error, including a clean EOF,
// means the connection is closed — the codec treats them the same way.
func (s *Session) readLoop() {
	defer s.Close()

	var dec Decoder
	buf := make([]byte, 8192)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
			for {
				payload, ok, derr := dec.Next()
				if derr != nil {
					s.log.Warn("bad frame", zap.Error(derr))
					return
				}
				if !ok {
					break
				}
				select {
				case s.InQueue <- payload:
				case <-s.closeCh:
					return
				}
			}
		}
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
	}
}

// writeLoop frames and writes payloads from OutQueue. Writes are buffered
// and flushed once the queue runs dry so one tick's worth of messages goes
// out in as few packets as possible.
func (s *Session) writeLoop() {
	defer s.Close()

	bw := bufio.NewWriter(s.conn)
	for {
		select {
		case payload := <-s.OutQueue:
			if !s.writeOne(bw, payload) {
				return
			}
			for len(s.OutQueue) > 0 {
				select {
				case more := <-s.OutQueue:
					if !s.writeOne(bw, more) {
						return
					}
				case <-s.closeCh:
					return
				}
			}
			if err := bw.Flush(); err != nil {
				if !s.closed.Load() {
					s.log.Debug("flush error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeOne(bw *bufio.Writer, payload []byte) bool {
	if s.writeTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if err := WriteFrame(bw, payload); err != nil {
		if !s.closed.Load() {
			s.log.Debug("write error", zap.Error(err))
		}
		return false
	}
	return true
}
