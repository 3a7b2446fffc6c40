package net

import (
	"bytes"
	"testing"
)

func frame(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	return buf.Bytes()
}

func drain(t *testing.T, d *Decoder) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		payload, ok, err := d.Next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !ok {
			return out
		}
		out = append(out, payload)
	}
}

func TestRoundTripSingleByteChunks(t *testing.T) {
	payloads := [][]byte{
		{0x01},
		[]byte("hello, arena"),
		{},
		bytes.Repeat([]byte{0xAB}, 1000),
	}
	var stream []byte
	for _, p := range payloads {
		stream = append(stream, frame(t, p)...)
	}

	// Feed the whole stream one byte at a time: chunk boundaries must not
	// change what comes out.
	var d Decoder
	var got [][]byte
	for _, b := range stream {
		d.Feed([]byte{b})
		got = append(got, drain(t, &d)...)
	}

	if len(got) != len(payloads) {
		t.Fatalf("decoded %d payloads, want %d", len(got), len(payloads))
	}
	for i := range payloads {
		if !bytes.Equal(got[i], payloads[i]) {
			t.Fatalf("payload %d = %q, want %q", i, got[i], payloads[i])
		}
	}
	if d.Buffered() != 0 {
		t.Fatalf("%d bytes left in decoder", d.Buffered())
	}
}

func TestPartialFrameRetained(t *testing.T) {
	f := frame(t, []byte("partial"))

	var d Decoder
	d.Feed(f[:len(f)-1])
	if got := drain(t, &d); len(got) != 0 {
		t.Fatalf("decoded %d payloads from an incomplete frame", len(got))
	}

	d.Feed(f[len(f)-1:])
	got := drain(t, &d)
	if len(got) != 1 || !bytes.Equal(got[0], []byte("partial")) {
		t.Fatalf("got %q", got)
	}
}

func TestMultiFrameSingleFeed(t *testing.T) {
	var stream []byte
	for _, p := range []string{"one", "two", "three"} {
		stream = append(stream, frame(t, []byte(p))...)
	}
	partial := frame(t, []byte("fourfour"))
	stream = append(stream, partial[:5]...)

	var d Decoder
	d.Feed(stream)
	got := drain(t, &d)
	if len(got) != 3 {
		t.Fatalf("decoded %d payloads, want 3", len(got))
	}
	if d.Buffered() != 5 {
		t.Fatalf("retained %d bytes, want 5", d.Buffered())
	}

	d.Feed(partial[5:])
	got = drain(t, &d)
	if len(got) != 1 || !bytes.Equal(got[0], []byte("fourfour")) {
		t.Fatalf("got %q", got)
	}
}

func TestWriteFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, make([]byte, MaxPayloadLen+1))
	if err == nil {
		t.Fatal("expected error for oversized payload")
	}
	if buf.Len() != 0 {
		t.Fatalf("wrote %d bytes despite error", buf.Len())
	}
}

func TestDecoderRejectsAbsurdLength(t *testing.T) {
	var d Decoder
	d.Feed([]byte{0xFF, 0xFF, 0xFF, 0xFF}) // ~4GB declared payload
	if _, _, err := d.Next(); err == nil {
		t.Fatal("expected error for invalid declared length")
	}
}
