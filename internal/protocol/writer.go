package protocol

import (
	"encoding/binary"
	"math"

	"github.com/rustcycles/rustcycles-sub000/internal/mathx"
)

// Writer builds one message payload. Byte 0 is always the opcode, all
// multi-byte fields are little-endian.
type Writer struct {
	buf []byte
}

func NewWriter(opcode byte) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.WriteC(opcode)
	return w
}

// WriteC writes 1 byte.
func (w *Writer) WriteC(v byte) {
	w.buf = append(w.buf, v)
}

// WriteH writes 2 bytes little-endian.
func (w *Writer) WriteH(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteD writes 4 bytes little-endian unsigned.
func (w *Writer) WriteD(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteF writes a float32 as 4 bytes little-endian.
func (w *Writer) WriteF(v float32) {
	w.WriteD(math.Float32bits(v))
}

// WriteS writes a UTF-8 string with a 2-byte length prefix.
func (w *Writer) WriteS(s string) {
	w.WriteH(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *Writer) WriteVec3(v mathx.Vec3) {
	w.WriteF(v.X)
	w.WriteF(v.Y)
	w.WriteF(v.Z)
}

func (w *Writer) WriteQuat(q mathx.Quat) {
	w.WriteF(q.X)
	w.WriteF(q.Y)
	w.WriteF(q.Z)
	w.WriteF(q.W)
}

// Bytes returns the finished payload.
func (w *Writer) Bytes() []byte {
	return w.buf
}
