// Package event defines GameEvent, the closed tagged union of per-tick
// occurrences a Tick carries alongside its TickState, and its wire codec.
//
// Uses a compile-time iota enum with a String() method and a single
// envelope struct carrying every variant's fields. GameEvent is replicated
// to clients every tick, so it uses the same encoding/binary, registry-order
// wire style as netcomp — see Kind's doc comment on ordering stability.
package event

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"catch/internal/mathutil"
)

// Kind discriminates GameEvent's variant. Declared explicitly (not
// renumbered) since Kind values appear on the wire.
type Kind uint8

const (
	KindPlayerJoin Kind = iota
	KindPlayerLeave
	KindPlayerDied
	KindCreateEntity
	KindRemoveEntity
	KindPlayerFlip
	KindPlayerDash
	KindPlayerTakeItem
	KindEnemyDied
	KindProjectileImpact
	KindPlaySound
	KindCorrectState
)

// String returns the event kind's debug name.
func (k Kind) String() string {
	switch k {
	case KindPlayerJoin:
		return "player_join"
	case KindPlayerLeave:
		return "player_leave"
	case KindPlayerDied:
		return "player_died"
	case KindCreateEntity:
		return "create_entity"
	case KindRemoveEntity:
		return "remove_entity"
	case KindPlayerFlip:
		return "player_flip"
	case KindPlayerDash:
		return "player_dash"
	case KindPlayerTakeItem:
		return "player_take_item"
	case KindEnemyDied:
		return "enemy_died"
	case KindProjectileImpact:
		return "projectile_impact"
	case KindPlaySound:
		return "play_sound"
	case KindCorrectState:
		return "correct_state"
	default:
		return "unknown"
	}
}

// NoKiller is the sentinel PlayerDied.Killer value meaning the player died
// without a killer (e.g. an enemy collision rather than a player).
const NoKiller uint32 = 0

// GameEvent is the envelope carrying every variant's fields; only the fields
// relevant to Kind are meaningful for a given instance. Constructors below
// populate exactly those fields so callers cannot build an ambiguous event.
type GameEvent struct {
	Kind Kind

	Player   uint32 // PlayerJoin, PlayerLeave, PlayerDied, PlayerFlip, PlayerDash, PlayerTakeItem
	Killer   uint32 // PlayerDied (NoKiller if none)
	Position mathutil.Vec2 // PlayerDied, ProjectileImpact, PlaySound
	NetID    uint32 // CreateEntity, RemoveEntity, EnemyDied, ProjectileImpact
	TypeID   uint16 // CreateEntity
	Owner    uint32 // CreateEntity
	SoundID  uint16 // PlaySound
	Tick     uint32 // CorrectState
}

// NewPlayerJoin builds a PlayerJoin event.
func NewPlayerJoin(player uint32) GameEvent { return GameEvent{Kind: KindPlayerJoin, Player: player} }

// NewPlayerLeave builds a PlayerLeave event.
func NewPlayerLeave(player uint32) GameEvent { return GameEvent{Kind: KindPlayerLeave, Player: player} }

// NewPlayerDied builds a PlayerDied event. killer is NoKiller if the player
// died without one (e.g. a bouncy-enemy collision).
func NewPlayerDied(player uint32, pos mathutil.Vec2, killer uint32) GameEvent {
	return GameEvent{Kind: KindPlayerDied, Player: player, Position: pos, Killer: killer}
}

// NewCreateEntity builds a CreateEntity event.
func NewCreateEntity(netID uint32, typeID uint16, owner uint32) GameEvent {
	return GameEvent{Kind: KindCreateEntity, NetID: netID, TypeID: typeID, Owner: owner}
}

// NewRemoveEntity builds a RemoveEntity event.
func NewRemoveEntity(netID uint32) GameEvent { return GameEvent{Kind: KindRemoveEntity, NetID: netID} }

// NewPlayerFlip builds a PlayerFlip event.
func NewPlayerFlip(player uint32) GameEvent { return GameEvent{Kind: KindPlayerFlip, Player: player} }

// NewPlayerDash builds a PlayerDash event.
func NewPlayerDash(player uint32) GameEvent { return GameEvent{Kind: KindPlayerDash, Player: player} }

// NewPlayerTakeItem builds a PlayerTakeItem event.
func NewPlayerTakeItem(player uint32) GameEvent {
	return GameEvent{Kind: KindPlayerTakeItem, Player: player}
}

// NewEnemyDied builds an EnemyDied event.
func NewEnemyDied(netID uint32) GameEvent { return GameEvent{Kind: KindEnemyDied, NetID: netID} }

// NewProjectileImpact builds a ProjectileImpact event.
func NewProjectileImpact(netID uint32, pos mathutil.Vec2) GameEvent {
	return GameEvent{Kind: KindProjectileImpact, NetID: netID, Position: pos}
}

// NewPlaySound builds a PlaySound event.
func NewPlaySound(soundID uint16, pos mathutil.Vec2) GameEvent {
	return GameEvent{Kind: KindPlaySound, SoundID: soundID, Position: pos}
}

// NewCorrectState builds a CorrectState event.
func NewCorrectState(tick uint32) GameEvent { return GameEvent{Kind: KindCorrectState, Tick: tick} }

func putFloat32(buf *bytes.Buffer, v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	buf.Write(b[:])
}

func getFloat32(r *bytes.Reader) (float32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b[:])), nil
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

func putUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func getUint16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func putVec2(buf *bytes.Buffer, v mathutil.Vec2) {
	putFloat32(buf, v.X)
	putFloat32(buf, v.Y)
}

func getVec2(r *bytes.Reader) (mathutil.Vec2, error) {
	x, err := getFloat32(r)
	if err != nil {
		return mathutil.Vec2{}, err
	}
	y, err := getFloat32(r)
	if err != nil {
		return mathutil.Vec2{}, err
	}
	return mathutil.Vec2{X: x, Y: y}, nil
}

// Encode appends e's wire form to buf: a Kind byte followed by the variant's
// fields in declaration order.
func (e GameEvent) Encode(buf *bytes.Buffer) {
	buf.WriteByte(byte(e.Kind))
	switch e.Kind {
	case KindPlayerJoin, KindPlayerLeave, KindPlayerFlip, KindPlayerDash, KindPlayerTakeItem:
		putUint32(buf, e.Player)
	case KindPlayerDied:
		putUint32(buf, e.Player)
		putVec2(buf, e.Position)
		putUint32(buf, e.Killer)
	case KindCreateEntity:
		putUint32(buf, e.NetID)
		putUint16(buf, e.TypeID)
		putUint32(buf, e.Owner)
	case KindRemoveEntity:
		putUint32(buf, e.NetID)
	case KindEnemyDied:
		putUint32(buf, e.NetID)
	case KindProjectileImpact:
		putUint32(buf, e.NetID)
		putVec2(buf, e.Position)
	case KindPlaySound:
		putUint16(buf, e.SoundID)
		putVec2(buf, e.Position)
	case KindCorrectState:
		putUint32(buf, e.Tick)
	}
}

// DecodeEvent reads a GameEvent written by Encode.
func DecodeEvent(r *bytes.Reader) (GameEvent, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return GameEvent{}, err
	}
	e := GameEvent{Kind: Kind(kindByte)}

	switch e.Kind {
	case KindPlayerJoin, KindPlayerLeave, KindPlayerFlip, KindPlayerDash, KindPlayerTakeItem:
		if e.Player, err = getUint32(r); err != nil {
			return GameEvent{}, err
		}
	case KindPlayerDied:
		if e.Player, err = getUint32(r); err != nil {
			return GameEvent{}, err
		}
		if e.Position, err = getVec2(r); err != nil {
			return GameEvent{}, err
		}
		if e.Killer, err = getUint32(r); err != nil {
			return GameEvent{}, err
		}
	case KindCreateEntity:
		if e.NetID, err = getUint32(r); err != nil {
			return GameEvent{}, err
		}
		if e.TypeID, err = getUint16(r); err != nil {
			return GameEvent{}, err
		}
		if e.Owner, err = getUint32(r); err != nil {
			return GameEvent{}, err
		}
	case KindRemoveEntity:
		if e.NetID, err = getUint32(r); err != nil {
			return GameEvent{}, err
		}
	case KindEnemyDied:
		if e.NetID, err = getUint32(r); err != nil {
			return GameEvent{}, err
		}
	case KindProjectileImpact:
		if e.NetID, err = getUint32(r); err != nil {
			return GameEvent{}, err
		}
		if e.Position, err = getVec2(r); err != nil {
			return GameEvent{}, err
		}
	case KindPlaySound:
		if e.SoundID, err = getUint16(r); err != nil {
			return GameEvent{}, err
		}
		if e.Position, err = getVec2(r); err != nil {
			return GameEvent{}, err
		}
	case KindCorrectState:
		if e.Tick, err = getUint32(r); err != nil {
			return GameEvent{}, err
		}
	default:
		return GameEvent{}, fmt.Errorf("event: unknown kind %d", kindByte)
	}
	return e, nil
}

// EncodeEvents writes a length-prefixed (uint32 count) sequence of events.
func EncodeEvents(events []GameEvent, buf *bytes.Buffer) {
	putUint32(buf, uint32(len(events)))
	for _, e := range events {
		e.Encode(buf)
	}
}

// DecodeEvents reads a sequence written by EncodeEvents, preserving order.
func DecodeEvents(r *bytes.Reader) ([]GameEvent, error) {
	n, err := getUint32(r)
	if err != nil {
		return nil, err
	}
	events := make([]GameEvent, 0, n)
	for i := uint32(0); i < n; i++ {
		e, err := DecodeEvent(r)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
