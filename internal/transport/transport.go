// Package transport is the narrow abstraction the simulation/replication
// core depends on: connect/listen, a non-blocking service() loop yielding
// Connect/Disconnect/Receive events, and per-peer reliable-ordered send on
// one of two channels. See ws.go for the concrete realization over
// gorilla/websocket.
//
// The register/unregister channel fan-in pattern this package's event queue
// uses mirrors a typical hub/broadcast connection registry.
package transport

import (
	"errors"
	"time"
)

// ChannelID names one of the two logical channels multiplexed over a single
// connection. Both are reliable-ordered; id 0 = Messages, id 1 = Ticks.
type ChannelID uint8

const (
	ChannelMessages ChannelID = 0
	ChannelTicks    ChannelID = 1
)

// PeerID is an opaque per-connection identifier minted by the transport.
type PeerID uint64

// EventKind discriminates Event's variant.
type EventKind uint8

const (
	EventNone EventKind = iota
	EventConnect
	EventDisconnect
	EventReceive
)

// Event is what Service yields: a peer connecting, disconnecting, or
// delivering a frame on one channel. EventNone means nothing was available
// before the timeout elapsed.
type Event struct {
	Kind    EventKind
	Peer    PeerID
	Channel ChannelID
	Data    []byte
	// IP is the remote address associated with Peer, set on EventConnect and
	// EventDisconnect so callers can release per-IP accounting without a
	// separate lookup after the peer has already been removed from the hub.
	IP string
}

// ErrUnknownPeer is returned by Send when the given PeerID has no live
// connection (already disconnected, or never existed).
var ErrUnknownPeer = errors.New("transport: unknown peer")

// ErrConnectTimeout is returned by Dial/FinishConnecting style callers when
// the handshake does not complete within the given timeout.
var ErrConnectTimeout = errors.New("transport: connect timeout")

// Transport is the interface the server and client cores depend on. Both the
// server-side (Listener) and client-side (Dialer) concrete types in ws.go
// satisfy it.
type Transport interface {
	// Service drains and returns one pending event, waiting up to timeout if
	// none is immediately available. timeout=0 returns EventNone promptly if
	// nothing is queued.
	Service(timeout time.Duration) (Event, error)

	// Send delivers data to peer on channel, reliable-ordered.
	Send(peer PeerID, channel ChannelID, data []byte) error

	// UserData returns the opaque per-peer slot (the server stores a
	// PlayerId there once a peer completes the connect handshake).
	UserData(peer PeerID) (any, bool)

	// SetUserData sets the opaque per-peer slot.
	SetUserData(peer PeerID, value any) bool

	// Close shuts the transport down, disconnecting every peer.
	Close() error
}
