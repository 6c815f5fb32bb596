// Package tickstate holds Tick and TickState — the per-tick snapshot of every
// replicated entity's components plus that tick's game events — and the
// delta codec used to transmit only what changed against a reference tick.
//
// TickState's entities are kept sorted ascending by net_id at rest, and the
// wire style follows netcomp's encoding/binary conventions with explicit,
// fixed-order wire contracts.
package tickstate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"catch/internal/event"
	"catch/internal/netcomp"
)

// EntityComponents pairs a replicated entity's net ID with its full
// component set as observed by one recipient.
type EntityComponents struct {
	NetID      uint32
	Components netcomp.NetComponents
}

// ForcedComponent names a (net_id, ComponentType) pair the client must apply
// verbatim this tick, skipping interpolation.
type ForcedComponent struct {
	NetID uint32
	Type  netcomp.ComponentType
}

// TickState is the replicated component values of every entity at the end of
// a tick, for one recipient. Entities must be sorted ascending by NetID
// before Encode — Sort enforces this; pair iteration (e.g. delta encoding)
// assumes it.
type TickState struct {
	Entities []EntityComponents
	Forced   []ForcedComponent
}

// Sort orders Entities ascending by NetID in place, restoring the invariant
// a TickState must hold at rest.
func (s *TickState) Sort() {
	sort.Slice(s.Entities, func(i, j int) bool { return s.Entities[i].NetID < s.Entities[j].NetID })
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

// Encode writes s in its fixed wire form: a length-prefixed sequence of
// (net_id, NetComponents), sorted ascending, followed by a
// length-prefixed sequence of (net_id, ComponentType) forced-component pairs.
func (s *TickState) Encode(buf *bytes.Buffer) {
	putUint32(buf, uint32(len(s.Entities)))
	for _, e := range s.Entities {
		putUint32(buf, e.NetID)
		e.Components.Encode(buf)
	}
	putUint32(buf, uint32(len(s.Forced)))
	for _, f := range s.Forced {
		putUint32(buf, f.NetID)
		buf.WriteByte(byte(f.Type))
	}
}

// DecodeTickState reads a TickState written by Encode.
func DecodeTickState(r *bytes.Reader) (TickState, error) {
	n, err := getUint32(r)
	if err != nil {
		return TickState{}, err
	}
	entities := make([]EntityComponents, 0, n)
	for i := uint32(0); i < n; i++ {
		netID, err := getUint32(r)
		if err != nil {
			return TickState{}, err
		}
		comps, err := netcomp.Decode(r)
		if err != nil {
			return TickState{}, err
		}
		entities = append(entities, EntityComponents{NetID: netID, Components: comps})
	}

	nf, err := getUint32(r)
	if err != nil {
		return TickState{}, err
	}
	forced := make([]ForcedComponent, 0, nf)
	for i := uint32(0); i < nf; i++ {
		netID, err := getUint32(r)
		if err != nil {
			return TickState{}, err
		}
		typeByte, err := r.ReadByte()
		if err != nil {
			return TickState{}, err
		}
		forced = append(forced, ForcedComponent{NetID: netID, Type: netcomp.ComponentType(typeByte)})
	}

	return TickState{Entities: entities, Forced: forced}, nil
}

// Equal reports whether s and other carry the same entities (by net_id and
// component values) and the same forced-component list.
func (s *TickState) Equal(other *TickState) bool {
	if len(s.Entities) != len(other.Entities) || len(s.Forced) != len(other.Forced) {
		return false
	}
	for i := range s.Entities {
		a, b := s.Entities[i], other.Entities[i]
		if a.NetID != b.NetID || !a.Components.Equal(&b.Components) {
			return false
		}
	}
	for i := range s.Forced {
		if s.Forced[i] != other.Forced[i] {
			return false
		}
	}
	return true
}

// Tick is one discrete simulation step: its ordinal, the events generated
// during it, and either the full resulting TickState (a keyframe) or a
// Delta against the recipient's previous keyframe/delta chain. Full is
// true exactly when State is populated; false means Delta is.
type Tick struct {
	TickNumber uint32
	Events     []event.GameEvent
	Full       bool
	State      TickState
	Delta      Delta
}

// Encode writes t in its fixed wire order: tick_number, events, a
// full/delta flag byte, then the payload the flag selects.
func (t *Tick) Encode(buf *bytes.Buffer) {
	putUint32(buf, t.TickNumber)
	event.EncodeEvents(t.Events, buf)
	if t.Full {
		buf.WriteByte(1)
		t.State.Encode(buf)
	} else {
		buf.WriteByte(0)
		t.Delta.Encode(buf)
	}
}

// DecodeTick reads a Tick written by Encode.
func DecodeTick(r *bytes.Reader) (Tick, error) {
	tickNumber, err := getUint32(r)
	if err != nil {
		return Tick{}, fmt.Errorf("tickstate: read tick_number: %w", err)
	}
	events, err := event.DecodeEvents(r)
	if err != nil {
		return Tick{}, fmt.Errorf("tickstate: read events: %w", err)
	}
	flag, err := r.ReadByte()
	if err != nil {
		return Tick{}, fmt.Errorf("tickstate: read full/delta flag: %w", err)
	}
	if flag == 1 {
		state, err := DecodeTickState(r)
		if err != nil {
			return Tick{}, fmt.Errorf("tickstate: read state: %w", err)
		}
		return Tick{TickNumber: tickNumber, Events: events, Full: true, State: state}, nil
	}
	delta, err := DecodeDelta(r)
	if err != nil {
		return Tick{}, fmt.Errorf("tickstate: read delta: %w", err)
	}
	return Tick{TickNumber: tickNumber, Events: events, Full: false, Delta: delta}, nil
}
