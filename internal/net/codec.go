// Package net implements the transport layer: length-prefixed framing over
// TCP, per-connection sessions with read/write goroutines, the listener and
// the client-side dialer. It moves opaque payload bytes; message semantics
// live in the protocol package.
package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// headerLen is the size of the little-endian u32 length prefix.
const headerLen = 4

// MaxPayloadLen caps a single frame's payload. Anything larger is a bug in
// message construction, not a legitimate frame.
const MaxPayloadLen = 1 << 24

// ErrFrameTooLarge is returned when a payload does not fit under
// MaxPayloadLen. It signals a programming error, not a runtime condition.
var ErrFrameTooLarge = errors.New("net: frame exceeds maximum payload length")

// WriteFrame writes one frame to w.
// Wire format: [4 bytes LE: payload length][payload].
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayloadLen {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	var header [headerLen]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// Decoder splits an incoming byte stream back into frame payloads. It holds
// partial bytes across calls, so one frame may arrive split across any
// number of reads, or many frames in one read with a trailing fragment.
// The chunking of the stream never changes what comes out.
type Decoder struct {
	buf []byte
}

// Feed appends freshly read bytes to the decoder's buffer.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next peels one complete frame payload off the front of the buffer.
// It returns ok=false when the buffer holds no complete frame yet, and an
// error when the declared length can never be a valid frame.
func (d *Decoder) Next() ([]byte, bool, error) {
	if len(d.buf) < headerLen {
		return nil, false, nil
	}
	payloadLen := int(binary.LittleEndian.Uint32(d.buf))
	if payloadLen > MaxPayloadLen {
		return nil, false, fmt.Errorf("net: invalid frame length %d", payloadLen)
	}
	if len(d.buf) < headerLen+payloadLen {
		return nil, false, nil
	}
	payload := make([]byte, payloadLen)
	copy(payload, d.buf[headerLen:headerLen+payloadLen])
	d.buf = d.buf[:copy(d.buf, d.buf[headerLen+payloadLen:])]
	return payload, true, nil
}

// Buffered returns how many undecoded bytes the decoder is holding.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}
