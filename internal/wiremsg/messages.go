// Package wiremsg is the control-channel protocol: ClientMessage,
// ServerMessage, and GameInfo, plus their wire codec.
//
// Grounded on netcomp/event's encoding/binary conventions for the codec
// style.
package wiremsg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"catch/internal/entitytype"
	"catch/internal/netcomp"
	"catch/internal/playerinput"
)

func putString(buf *bytes.Buffer, s string) {
	var lb [2]byte
	binary.LittleEndian.PutUint16(lb[:], uint16(len(s)))
	buf.Write(lb[:])
	buf.WriteString(s)
}

func getString(r *bytes.Reader) (string, error) {
	var lb [2]byte
	if _, err := r.Read(lb[:]); err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint16(lb[:])
	b := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(b); err != nil {
			return "", err
		}
	}
	return string(b), nil
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func getUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// GameInfo describes the session a newly accepted client is joining.
type GameInfo struct {
	MapName         string
	EntityTypes     []EntityTypeEntry
	TicksPerSecond  uint32
}

// EntityTypeEntry is one (name, component set) pair of GameInfo.entity_types.
type EntityTypeEntry struct {
	Name       string
	Components []netcomp.ComponentType
	Owner      []netcomp.ComponentType
}

// NewGameInfo builds a GameInfo from the closed entitytype.Registry, in
// entitytype.AllTypes order.
func NewGameInfo(mapName string, ticksPerSecond uint32) GameInfo {
	ids := entitytype.AllTypes()
	entries := make([]EntityTypeEntry, 0, len(ids))
	for _, id := range ids {
		def := entitytype.Registry[id]
		entries = append(entries, EntityTypeEntry{Name: id.String(), Components: def.Components, Owner: def.OwnerComponents})
	}
	return GameInfo{MapName: mapName, EntityTypes: entries, TicksPerSecond: ticksPerSecond}
}

func (g *GameInfo) encode(buf *bytes.Buffer) {
	putString(buf, g.MapName)
	putUint32(buf, uint32(len(g.EntityTypes)))
	for _, e := range g.EntityTypes {
		putString(buf, e.Name)
		buf.WriteByte(byte(len(e.Components)))
		for _, c := range e.Components {
			buf.WriteByte(byte(c))
		}
		buf.WriteByte(byte(len(e.Owner)))
		for _, c := range e.Owner {
			buf.WriteByte(byte(c))
		}
	}
	putUint32(buf, g.TicksPerSecond)
}

func decodeGameInfo(r *bytes.Reader) (GameInfo, error) {
	mapName, err := getString(r)
	if err != nil {
		return GameInfo{}, err
	}
	n, err := getUint32(r)
	if err != nil {
		return GameInfo{}, err
	}
	entries := make([]EntityTypeEntry, 0, n)
	for i := uint32(0); i < n; i++ {
		name, err := getString(r)
		if err != nil {
			return GameInfo{}, err
		}
		cn, err := r.ReadByte()
		if err != nil {
			return GameInfo{}, err
		}
		comps := make([]netcomp.ComponentType, cn)
		for j := range comps {
			b, err := r.ReadByte()
			if err != nil {
				return GameInfo{}, err
			}
			comps[j] = netcomp.ComponentType(b)
		}
		on, err := r.ReadByte()
		if err != nil {
			return GameInfo{}, err
		}
		owner := make([]netcomp.ComponentType, on)
		for j := range owner {
			b, err := r.ReadByte()
			if err != nil {
				return GameInfo{}, err
			}
			owner[j] = netcomp.ComponentType(b)
		}
		entries = append(entries, EntityTypeEntry{Name: name, Components: comps, Owner: owner})
	}
	ticksPerSecond, err := getUint32(r)
	if err != nil {
		return GameInfo{}, err
	}
	return GameInfo{MapName: mapName, EntityTypes: entries, TicksPerSecond: ticksPerSecond}, nil
}

// ClientKind discriminates ClientMessage's variant.
type ClientKind uint8

const (
	ClientPong ClientKind = iota
	ClientWishConnect
	ClientPlayerInput
	ClientStartingTick
)

// ClientMessage is a message sent from client to server on the Messages
// channel.
type ClientMessage struct {
	Kind        ClientKind
	Name        string                         // WishConnect
	Input       playerinput.TimedPlayerInput   // PlayerInput
	Tick        uint32                         // StartingTick
}

// Encode appends m's wire form to buf.
func (m *ClientMessage) Encode(buf *bytes.Buffer) {
	buf.WriteByte(byte(m.Kind))
	switch m.Kind {
	case ClientWishConnect:
		putString(buf, m.Name)
	case ClientPlayerInput:
		m.Input.Encode(buf)
	case ClientStartingTick:
		putUint32(buf, m.Tick)
	}
}

// DecodeClientMessage reads a ClientMessage written by Encode.
func DecodeClientMessage(r *bytes.Reader) (ClientMessage, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return ClientMessage{}, err
	}
	m := ClientMessage{Kind: ClientKind(kindByte)}
	switch m.Kind {
	case ClientPong:
	case ClientWishConnect:
		if m.Name, err = getString(r); err != nil {
			return ClientMessage{}, err
		}
	case ClientPlayerInput:
		if m.Input, err = playerinput.Decode(r); err != nil {
			return ClientMessage{}, err
		}
	case ClientStartingTick:
		if m.Tick, err = getUint32(r); err != nil {
			return ClientMessage{}, err
		}
	default:
		return ClientMessage{}, fmt.Errorf("wiremsg: unknown client message kind %d", kindByte)
	}
	return m, nil
}

// ServerKind discriminates ServerMessage's variant.
type ServerKind uint8

const (
	ServerPing ServerKind = iota
	ServerAcceptConnect
	ServerPlayerConnect
	ServerPlayerDisconnect
)

// ServerMessage is a message sent from server to client on the Messages
// channel.
type ServerMessage struct {
	Kind     ServerKind
	YourID   uint32   // AcceptConnect
	GameInfo GameInfo // AcceptConnect
	ID       uint32   // PlayerConnect, PlayerDisconnect
	Name     string   // PlayerConnect
}

// Encode appends m's wire form to buf.
func (m *ServerMessage) Encode(buf *bytes.Buffer) {
	buf.WriteByte(byte(m.Kind))
	switch m.Kind {
	case ServerAcceptConnect:
		putUint32(buf, m.YourID)
		m.GameInfo.encode(buf)
	case ServerPlayerConnect:
		putUint32(buf, m.ID)
		putString(buf, m.Name)
	case ServerPlayerDisconnect:
		putUint32(buf, m.ID)
	}
}

// DecodeServerMessage reads a ServerMessage written by Encode.
func DecodeServerMessage(r *bytes.Reader) (ServerMessage, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return ServerMessage{}, err
	}
	m := ServerMessage{Kind: ServerKind(kindByte)}
	switch m.Kind {
	case ServerPing:
	case ServerAcceptConnect:
		if m.YourID, err = getUint32(r); err != nil {
			return ServerMessage{}, err
		}
		if m.GameInfo, err = decodeGameInfo(r); err != nil {
			return ServerMessage{}, err
		}
	case ServerPlayerConnect:
		if m.ID, err = getUint32(r); err != nil {
			return ServerMessage{}, err
		}
		if m.Name, err = getString(r); err != nil {
			return ServerMessage{}, err
		}
	case ServerPlayerDisconnect:
		if m.ID, err = getUint32(r); err != nil {
			return ServerMessage{}, err
		}
	default:
		return ServerMessage{}, fmt.Errorf("wiremsg: unknown server message kind %d", kindByte)
	}
	return m, nil
}
