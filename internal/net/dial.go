package net

import (
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

// Dial connects to a server, retrying on failure since the server may not
// have bound its listener yet. Unlike the listener side there is an upper
// bound: a server that never appears is reported as an error, not waited on
// forever.
func Dial(addr string, retries int, retryDelay time.Duration, inSize, outSize int, writeTimeout time.Duration, log *zap.Logger) (*Session, error) {
	var conn net.Conn
	var err error
	for attempt := 0; ; attempt++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		if attempt >= retries {
			return nil, fmt.Errorf("connect to %s after %d attempts: %w", addr, attempt+1, err)
		}
		log.Debug("connect failed, retrying", zap.String("addr", addr), zap.Error(err))
		time.Sleep(retryDelay)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}

	sess := NewSession(conn, 0, inSize, outSize, writeTimeout, log)
	sess.Start()
	return sess, nil
}
