package serverside

import (
	"bytes"
	"testing"
	"time"

	"catch/internal/config"
	"catch/internal/ecs"
	"catch/internal/entitytype"
	"catch/internal/mapmodel"
	"catch/internal/mathutil"
	"catch/internal/playerinput"
	"catch/internal/tickstate"
	"catch/internal/transport"
	"catch/internal/wiremsg"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.AppConfig{
		Sim:     config.DefaultSim(),
		Limits:  config.DefaultLimits(),
		Spatial: config.DefaultSpatial(),
	}
	return NewServer(cfg, mapmodel.NewTestMap())
}

// sentMessage records one frame handed to recordingTransport.Send, in send
// order, regardless of channel.
type sentMessage struct {
	peer    transport.PeerID
	channel transport.ChannelID
	data    []byte
}

// recordingTransport captures every frame sent to a peer so tests can decode
// and inspect what sendSnapshots or a handshake handler actually wrote, and
// in what order.
type recordingTransport struct {
	sent     [][]byte // ChannelTicks frames only, kept for existing callers
	messages []sentMessage
}

func (r *recordingTransport) Service(time.Duration) (transport.Event, error) {
	return transport.Event{Kind: transport.EventNone}, nil
}

func (r *recordingTransport) Send(peer transport.PeerID, channel transport.ChannelID, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	if channel == transport.ChannelTicks {
		r.sent = append(r.sent, cp)
	}
	r.messages = append(r.messages, sentMessage{peer: peer, channel: channel, data: cp})
	return nil
}

func (r *recordingTransport) UserData(transport.PeerID) (any, bool)  { return nil, false }
func (r *recordingTransport) SetUserData(transport.PeerID, any) bool { return true }
func (r *recordingTransport) Close() error                           { return nil }

func newTestServerWithPlayer(t *testing.T) (*Server, *recordingTransport, uint32) {
	t.Helper()
	s := newTestServer(t)
	rt := &recordingTransport{}
	s.transport = rt
	const playerID = uint32(1)
	s.players[playerID] = &Player{ID: playerID, Peer: transport.PeerID(playerID), State: Normal, IsNew: true}
	return s, rt, playerID
}

func TestTickInitWorldSpawnsWallsAndEnemies(t *testing.T) {
	s := newTestServer(t)
	s.tick()

	if s.tickNumber != 1 {
		t.Fatalf("tickNumber = %d, want 1", s.tickNumber)
	}

	walls, enemies := 0, 0
	s.world.Each(func(h ecs.Handle) {
		switch s.world.TypeOf(h) {
		case entitytype.WallWood:
			walls++
		case entitytype.BouncyEnemy:
			enemies++
		}
	})

	if walls == 0 {
		t.Fatalf("expected at least one WallWood entity after world init")
	}
	if enemies != bouncyEnemyCount {
		t.Fatalf("enemies = %d, want %d", enemies, bouncyEnemyCount)
	}
}

func TestTickRunsIdempotentlyPastFirstTick(t *testing.T) {
	s := newTestServer(t)
	s.tick()
	before := 0
	s.world.Each(func(ecs.Handle) { before++ })

	s.tick()
	s.tick()

	after := 0
	s.world.Each(func(ecs.Handle) { after++ })
	if after != before {
		t.Fatalf("entity count changed after subsequent ticks: %d -> %d, initWorld must only run once", before, after)
	}
	if s.tickNumber != 3 {
		t.Fatalf("tickNumber = %d, want 3", s.tickNumber)
	}
}

func TestSendSnapshotsSendsFullThenDeltaTicks(t *testing.T) {
	s, rt, playerID := newTestServerWithPlayer(t)

	s.tick()
	s.tick()

	if len(rt.sent) != 2 {
		t.Fatalf("expected 2 sent frames, got %d", len(rt.sent))
	}

	first, err := tickstate.DecodeTick(bytes.NewReader(rt.sent[0]))
	if err != nil {
		t.Fatalf("decode first tick: %v", err)
	}
	if !first.Full {
		t.Fatalf("first tick for a newly seen player must be a full keyframe")
	}

	second, err := tickstate.DecodeTick(bytes.NewReader(rt.sent[1]))
	if err != nil {
		t.Fatalf("decode second tick: %v", err)
	}
	if second.Full {
		t.Fatalf("second tick should be delta-encoded against the first")
	}

	baseline, ok := s.lastSent[playerID]
	if !ok {
		t.Fatalf("expected a tracked baseline for player %d", playerID)
	}
	reconstructed, err := tickstate.Apply(&first.State, second.Delta)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !reconstructed.Equal(&baseline) {
		t.Fatalf("reconstructed state does not match tracked baseline")
	}
}

func TestTickClearsPendingInputAfterApplying(t *testing.T) {
	s, _, playerID := newTestServerWithPlayer(t)
	p := s.players[playerID]
	s.spawnPlayerEntity(p)
	s.pendingInput[playerID] = playerinput.TimedPlayerInput{Input: playerinput.Forward, DurationS: 0.1}

	s.tick()

	if _, ok := s.pendingInput[playerID]; ok {
		t.Fatalf("pendingInput[%d] still set after tick(), want cleared once applied", playerID)
	}
}

func TestTickDoesNotReapplyStaleInputOnSubsequentTicks(t *testing.T) {
	s, _, playerID := newTestServerWithPlayer(t)
	p := s.players[playerID]
	s.spawnPlayerEntity(p)
	s.pendingInput[playerID] = playerinput.TimedPlayerInput{Input: playerinput.Forward, DurationS: 0.1}

	s.tick()
	vel1, _ := s.world.LinearVelocity.Get(p.ControlledEntity)
	speed1 := mathutil.Length(vel1.V)

	s.tick()
	vel2, _ := s.world.LinearVelocity.Get(p.ControlledEntity)
	speed2 := mathutil.Length(vel2.V)

	if speed2 >= speed1 {
		t.Fatalf("speed after a second, input-free tick = %v, want less than %v (friction-only decay); a re-applied stale Forward input would keep accelerating", speed2, speed1)
	}
}

func TestAcceptPlayerSendsAcceptConnectBeforeAnyPlayerConnectToTheNewPeer(t *testing.T) {
	s, rt, _ := newTestServerWithPlayer(t)
	const newID = uint32(2)
	newPeer := transport.PeerID(newID)
	s.players[newID] = &Player{ID: newID, Peer: newPeer, State: Connecting}

	s.acceptPlayer(s.players[newID], "newcomer")

	if s.players[newID].State != Normal {
		t.Fatalf("expected newly accepted player to end in Normal state")
	}

	var toNewPeer []wiremsg.ServerMessage
	for _, m := range rt.messages {
		if m.peer != newPeer || m.channel != transport.ChannelMessages {
			continue
		}
		msg, err := wiremsg.DecodeServerMessage(bytes.NewReader(m.data))
		if err != nil {
			t.Fatalf("decode message to new peer: %v", err)
		}
		toNewPeer = append(toNewPeer, msg)
	}
	if len(toNewPeer) == 0 {
		t.Fatalf("expected at least one message sent to the new peer")
	}
	if toNewPeer[0].Kind != wiremsg.ServerAcceptConnect {
		t.Fatalf("first message to the new peer = %v, want ServerAcceptConnect (the new peer must not receive its own PlayerConnect broadcast)", toNewPeer[0].Kind)
	}
}
