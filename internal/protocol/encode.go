package protocol

import (
	"fmt"

	"github.com/rustcycles/rustcycles-sub000/internal/debug"
	"github.com/rustcycles/rustcycles-sub000/internal/game"
)

const (
	inputFire1 = 1 << iota
	inputFire2
	inputForward
	inputBackward
	inputLeft
	inputRight
)

func packInput(in game.Input) byte {
	var b byte
	if in.Fire1 {
		b |= inputFire1
	}
	if in.Fire2 {
		b |= inputFire2
	}
	if in.Forward {
		b |= inputForward
	}
	if in.Backward {
		b |= inputBackward
	}
	if in.Left {
		b |= inputLeft
	}
	if in.Right {
		b |= inputRight
	}
	return b
}

func unpackInput(b byte) game.Input {
	return game.Input{
		Fire1:    b&inputFire1 != 0,
		Fire2:    b&inputFire2 != 0,
		Forward:  b&inputForward != 0,
		Backward: b&inputBackward != 0,
		Left:     b&inputLeft != 0,
		Right:    b&inputRight != 0,
	}
}

func writeShape(w *Writer, s debug.Shape) {
	w.WriteC(byte(s.Kind))
	w.WriteVec3(s.A)
	w.WriteVec3(s.B)
	w.WriteQuat(s.Rot)
	w.WriteF(s.Scale)
	w.WriteF(s.Time)
	w.WriteC(s.Color.R)
	w.WriteC(s.Color.G)
	w.WriteC(s.Color.B)
	w.WriteC(s.Color.A)
}

func readShape(r *Reader) debug.Shape {
	return debug.Shape{
		Kind:  debug.ShapeKind(r.ReadC()),
		A:     r.ReadVec3(),
		B:     r.ReadVec3(),
		Rot:   r.ReadQuat(),
		Scale: r.ReadF(),
		Time:  r.ReadF(),
		Color: debug.Color{R: r.ReadC(), G: r.ReadC(), B: r.ReadC(), A: r.ReadC()},
	}
}

// EncodeClient serializes a client-to-server message payload.
func EncodeClient(msg ClientMessage) []byte {
	switch m := msg.(type) {
	case InputMessage:
		w := NewWriter(C_OPCODE_INPUT)
		w.WriteC(packInput(m.Input))
		return w.Bytes()
	case ChatMessage:
		w := NewWriter(C_OPCODE_CHAT)
		w.WriteS(m.Text)
		return w.Bytes()
	case JoinMessage:
		return NewWriter(C_OPCODE_JOIN).Bytes()
	case ObserveMessage:
		return NewWriter(C_OPCODE_OBSERVE).Bytes()
	default:
		panic(fmt.Sprintf("protocol: unencodable client message %T", msg))
	}
}

// EncodeServer serializes a server-to-client message payload.
func EncodeServer(msg ServerMessage) []byte {
	switch m := msg.(type) {
	case Init:
		w := NewWriter(S_OPCODE_INIT)
		w.WriteH(uint16(len(m.PlayerIndices)))
		for _, idx := range m.PlayerIndices {
			w.WriteD(idx)
		}
		w.WriteD(m.LocalPlayerIndex)
		w.WriteH(uint16(len(m.PlayerCycles)))
		for _, pc := range m.PlayerCycles {
			w.WriteD(pc.PlayerIndex)
			w.WriteD(pc.CycleIndex)
		}
		w.WriteH(uint16(len(m.PlayerProjectiles)))
		for _, pp := range m.PlayerProjectiles {
			w.WriteD(pp.PlayerIndex)
			w.WriteD(pp.ProjectileIndex)
		}
		return w.Bytes()
	case AddPlayer:
		w := NewWriter(S_OPCODE_ADD_PLAYER)
		w.WriteD(m.PlayerIndex)
		w.WriteS(m.Name)
		return w.Bytes()
	case RemovePlayer:
		w := NewWriter(S_OPCODE_REMOVE_PLAYER)
		w.WriteD(m.PlayerIndex)
		return w.Bytes()
	case Observe:
		w := NewWriter(S_OPCODE_OBSERVE)
		w.WriteD(m.PlayerIndex)
		return w.Bytes()
	case Spectate:
		w := NewWriter(S_OPCODE_SPECTATE)
		w.WriteD(m.PlayerIndex)
		w.WriteD(m.SpectateeIndex)
		return w.Bytes()
	case Join:
		w := NewWriter(S_OPCODE_JOIN)
		w.WriteD(m.PlayerIndex)
		return w.Bytes()
	case SpawnCycle:
		w := NewWriter(S_OPCODE_SPAWN_CYCLE)
		w.WriteD(m.PlayerIndex)
		w.WriteD(m.CycleIndex)
		return w.Bytes()
	case DespawnCycle:
		w := NewWriter(S_OPCODE_DESPAWN_CYCLE)
		w.WriteD(m.CycleIndex)
		return w.Bytes()
	case Update:
		w := NewWriter(S_OPCODE_UPDATE)
		w.WriteH(uint16(len(m.PlayerInputs)))
		for _, pi := range m.PlayerInputs {
			w.WriteD(pi.PlayerIndex)
			w.WriteC(packInput(pi.Input))
		}
		w.WriteH(uint16(len(m.CyclePhysics)))
		for _, cp := range m.CyclePhysics {
			w.WriteD(cp.CycleIndex)
			w.WriteVec3(cp.Translation)
			w.WriteQuat(cp.Rotation)
			w.WriteVec3(cp.Velocity)
		}
		w.WriteH(uint16(len(m.DebugTexts)))
		for _, t := range m.DebugTexts {
			w.WriteS(t)
		}
		w.WriteH(uint16(len(m.DebugShapes)))
		for _, s := range m.DebugShapes {
			writeShape(w, s)
		}
		return w.Bytes()
	default:
		panic(fmt.Sprintf("protocol: unencodable server message %T", msg))
	}
}
