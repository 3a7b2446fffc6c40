package protocol

import "fmt"

// DecodeClient parses a client-to-server message payload.
func DecodeClient(data []byte) (ClientMessage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrTruncated)
	}
	r := NewReader(data)
	var msg ClientMessage
	switch r.Opcode() {
	case C_OPCODE_INPUT:
		msg = InputMessage{Input: unpackInput(r.ReadC())}
	case C_OPCODE_CHAT:
		msg = ChatMessage{Text: r.ReadS()}
	case C_OPCODE_JOIN:
		msg = JoinMessage{}
	case C_OPCODE_OBSERVE:
		msg = ObserveMessage{}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOpcode, r.Opcode())
	}
	if r.Short() {
		return nil, fmt.Errorf("%w: opcode %d", ErrTruncated, r.Opcode())
	}
	return msg, nil
}

// DecodeServer parses a server-to-client message payload.
func DecodeServer(data []byte) (ServerMessage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrTruncated)
	}
	r := NewReader(data)
	var msg ServerMessage
	switch r.Opcode() {
	case S_OPCODE_INIT:
		var m Init
		n := int(r.ReadH())
		for i := 0; i < n && !r.Short(); i++ {
			m.PlayerIndices = append(m.PlayerIndices, r.ReadD())
		}
		m.LocalPlayerIndex = r.ReadD()
		n = int(r.ReadH())
		for i := 0; i < n && !r.Short(); i++ {
			m.PlayerCycles = append(m.PlayerCycles, PlayerCycle{
				PlayerIndex: r.ReadD(),
				CycleIndex:  r.ReadD(),
			})
		}
		n = int(r.ReadH())
		for i := 0; i < n && !r.Short(); i++ {
			m.PlayerProjectiles = append(m.PlayerProjectiles, PlayerProjectile{
				PlayerIndex:     r.ReadD(),
				ProjectileIndex: r.ReadD(),
			})
		}
		msg = m
	case S_OPCODE_ADD_PLAYER:
		msg = AddPlayer{PlayerIndex: r.ReadD(), Name: r.ReadS()}
	case S_OPCODE_REMOVE_PLAYER:
		msg = RemovePlayer{PlayerIndex: r.ReadD()}
	case S_OPCODE_OBSERVE:
		msg = Observe{PlayerIndex: r.ReadD()}
	case S_OPCODE_SPECTATE:
		msg = Spectate{PlayerIndex: r.ReadD(), SpectateeIndex: r.ReadD()}
	case S_OPCODE_JOIN:
		msg = Join{PlayerIndex: r.ReadD()}
	case S_OPCODE_SPAWN_CYCLE:
		msg = SpawnCycle{PlayerCycle{PlayerIndex: r.ReadD(), CycleIndex: r.ReadD()}}
	case S_OPCODE_DESPAWN_CYCLE:
		msg = DespawnCycle{CycleIndex: r.ReadD()}
	case S_OPCODE_UPDATE:
		var m Update
		n := int(r.ReadH())
		for i := 0; i < n && !r.Short(); i++ {
			m.PlayerInputs = append(m.PlayerInputs, PlayerInput{
				PlayerIndex: r.ReadD(),
				Input:       unpackInput(r.ReadC()),
			})
		}
		n = int(r.ReadH())
		for i := 0; i < n && !r.Short(); i++ {
			m.CyclePhysics = append(m.CyclePhysics, CyclePhysics{
				CycleIndex:  r.ReadD(),
				Translation: r.ReadVec3(),
				Rotation:    r.ReadQuat(),
				Velocity:    r.ReadVec3(),
			})
		}
		n = int(r.ReadH())
		for i := 0; i < n && !r.Short(); i++ {
			m.DebugTexts = append(m.DebugTexts, r.ReadS())
		}
		n = int(r.ReadH())
		for i := 0; i < n && !r.Short(); i++ {
			m.DebugShapes = append(m.DebugShapes, readShape(r))
		}
		msg = m
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOpcode, r.Opcode())
	}
	if r.Short() {
		return nil, fmt.Errorf("%w: opcode %d", ErrTruncated, r.Opcode())
	}
	return msg, nil
}
