package protocol

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rustcycles/rustcycles-sub000/internal/debug"
	"github.com/rustcycles/rustcycles-sub000/internal/game"
	"github.com/rustcycles/rustcycles-sub000/internal/mathx"
)

func TestClientInputRoundTrip(t *testing.T) {
	want := InputMessage{Input: game.Input{Fire1: true, Forward: true, Right: true}}
	got, err := DecodeClient(EncodeClient(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestInitRoundTrip(t *testing.T) {
	want := Init{
		PlayerIndices:    []uint32{0, 1, 3},
		LocalPlayerIndex: 3,
		PlayerCycles: []PlayerCycle{
			{PlayerIndex: 0, CycleIndex: 0},
			{PlayerIndex: 1, CycleIndex: 2},
		},
		PlayerProjectiles: []PlayerProjectile{{PlayerIndex: 1, ProjectileIndex: 0}},
	}
	got, err := DecodeServer(EncodeServer(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	want := Update{
		PlayerInputs: []PlayerInput{
			{PlayerIndex: 0, Input: game.Input{Backward: true, Left: true}},
			{PlayerIndex: 2, Input: game.Input{}},
		},
		CyclePhysics: []CyclePhysics{
			{
				CycleIndex:  1,
				Translation: mathx.V(-1, 5, 0.25),
				Rotation:    mathx.QuatYawPitch(90, 0),
				Velocity:    mathx.V(0, -9.8, 3),
			},
		},
		DebugTexts: []string{"sv projectiles: 2", "sv frame 417"},
		DebugShapes: []debug.Shape{
			{Kind: debug.KindArrow, A: mathx.V(0, 3, 0), B: mathx.Forward, Time: 0.5, Color: debug.Green},
			{Kind: debug.KindRot, A: mathx.V(1, 2, 3), Rot: mathx.QuatIdentity(), Scale: 1, Color: debug.White},
		},
	}
	got, err := DecodeServer(EncodeServer(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestChatAndBareVariants(t *testing.T) {
	msgs := []ClientMessage{ChatMessage{Text: "gg"}, JoinMessage{}, ObserveMessage{}}
	for _, want := range msgs {
		got, err := DecodeClient(EncodeClient(want))
		if err != nil {
			t.Fatalf("decode %T: %v", want, err)
		}
		if got != want {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	if _, err := DecodeServer([]byte{0xFE}); !errors.Is(err, ErrUnknownOpcode) {
		t.Fatalf("got %v, want ErrUnknownOpcode", err)
	}
	// A server opcode is unknown in the client direction.
	if _, err := DecodeClient(EncodeServer(Join{PlayerIndex: 1})); !errors.Is(err, ErrUnknownOpcode) {
		t.Fatalf("got %v, want ErrUnknownOpcode", err)
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	full := EncodeServer(Spectate{PlayerIndex: 1, SpectateeIndex: 2})
	if _, err := DecodeServer(full[:len(full)-3]); !errors.Is(err, ErrTruncated) {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
	if _, err := DecodeClient(nil); !errors.Is(err, ErrTruncated) {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}
