package transport

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func mustListen(t *testing.T) *Listener {
	t.Helper()
	l, err := Listen("127.0.0.1:0", 0, nil)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func waitForEvent(t *testing.T, tr Transport, kind EventKind, timeout time.Duration) Event {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		e, err := tr.Service(50 * time.Millisecond)
		if err != nil {
			t.Fatalf("Service failed: %v", err)
		}
		if e.Kind == kind {
			return e
		}
	}
	t.Fatalf("timed out waiting for event kind %d", kind)
	return Event{}
}

func TestConnectAndReceive(t *testing.T) {
	l := mustListen(t)
	url := fmt.Sprintf("ws://%s/ws", l.Addr().String())

	dialer, err := Dial(context.Background(), url, 2*time.Second)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { dialer.Close() })

	serverSideConnect := waitForEvent(t, l, EventConnect, 2*time.Second)

	payload := []byte("hello")
	if err := dialer.Send(ServerPeerID, ChannelMessages, payload); err != nil {
		t.Fatalf("client Send failed: %v", err)
	}

	recv := waitForEvent(t, l, EventReceive, 2*time.Second)
	if recv.Peer != serverSideConnect.Peer {
		t.Fatalf("receive event peer mismatch: got %v want %v", recv.Peer, serverSideConnect.Peer)
	}
	if recv.Channel != ChannelMessages {
		t.Fatalf("channel mismatch: got %v want %v", recv.Channel, ChannelMessages)
	}
	if string(recv.Data) != "hello" {
		t.Fatalf("payload mismatch: got %q want %q", recv.Data, "hello")
	}
}

func TestUserDataRoundTrip(t *testing.T) {
	l := mustListen(t)
	url := fmt.Sprintf("ws://%s/ws", l.Addr().String())

	dialer, err := Dial(context.Background(), url, 2*time.Second)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { dialer.Close() })

	connectEvent := waitForEvent(t, l, EventConnect, 2*time.Second)

	if !l.SetUserData(connectEvent.Peer, uint32(42)) {
		t.Fatal("SetUserData should succeed for a live peer")
	}
	v, ok := l.UserData(connectEvent.Peer)
	if !ok || v.(uint32) != 42 {
		t.Fatalf("UserData = %v,%v want 42,true", v, ok)
	}
}

func TestSendToUnknownPeerErrors(t *testing.T) {
	l := mustListen(t)
	if err := l.Send(PeerID(99999), ChannelMessages, []byte("x")); err != ErrUnknownPeer {
		t.Fatalf("expected ErrUnknownPeer, got %v", err)
	}
}

func TestServiceZeroTimeoutReturnsPromptly(t *testing.T) {
	l := mustListen(t)
	start := time.Now()
	e, err := l.Service(0)
	if err != nil {
		t.Fatalf("Service failed: %v", err)
	}
	if e.Kind != EventNone {
		t.Fatalf("expected EventNone on an idle transport, got %v", e.Kind)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("Service(0) took too long: %v", elapsed)
	}
}
