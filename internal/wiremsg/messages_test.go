package wiremsg

import (
	"bytes"
	"testing"

	"catch/internal/playerinput"
)

func TestClientMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  ClientMessage
	}{
		{"pong", ClientMessage{Kind: ClientPong}},
		{"wish connect", ClientMessage{Kind: ClientWishConnect, Name: "leo"}},
		{"player input", ClientMessage{Kind: ClientPlayerInput, Input: playerinput.TimedPlayerInput{DurationS: 0.1, Input: playerinput.Dash}}},
		{"starting tick", ClientMessage{Kind: ClientStartingTick, Tick: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.msg.Encode(&buf)
			got, err := DecodeClientMessage(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if got != tt.msg {
				t.Fatalf("round trip mismatch: got %+v want %+v", got, tt.msg)
			}
		})
	}
}

func TestServerMessageAcceptConnectRoundTrip(t *testing.T) {
	info := NewGameInfo("test_arena", 30)
	msg := ServerMessage{Kind: ServerAcceptConnect, YourID: 1, GameInfo: info}

	var buf bytes.Buffer
	msg.Encode(&buf)
	got, err := DecodeServerMessage(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.YourID != msg.YourID || got.GameInfo.MapName != msg.GameInfo.MapName {
		t.Fatalf("mismatch: got %+v want %+v", got, msg)
	}
	if got.GameInfo.TicksPerSecond != 30 {
		t.Fatalf("ticks_per_second mismatch: got %d", got.GameInfo.TicksPerSecond)
	}
	if len(got.GameInfo.EntityTypes) != len(info.EntityTypes) {
		t.Fatalf("entity type count mismatch: got %d want %d", len(got.GameInfo.EntityTypes), len(info.EntityTypes))
	}
}

func TestServerMessagePlayerConnectRoundTrip(t *testing.T) {
	msg := ServerMessage{Kind: ServerPlayerConnect, ID: 3, Name: "nat"}
	var buf bytes.Buffer
	msg.Encode(&buf)
	got, err := DecodeServerMessage(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.ID != msg.ID || got.Name != msg.Name {
		t.Fatalf("mismatch: got %+v want %+v", got, msg)
	}
}

func TestDecodeUnknownKindErrors(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(99)
	if _, err := DecodeClientMessage(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatal("expected error for unknown client message kind")
	}
}
