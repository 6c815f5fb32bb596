package tickstate

import (
	"bytes"
	"fmt"

	"catch/internal/netcomp"
)

// Delta is a TickState encoded against a reference (baseline) TickState:
// entities newly present carry their full component set, entities present in
// both carry a netcomp delta against their baseline value, and entities no
// longer present are listed so the receiver can drop them. Forced components
// are tick-local (they describe this tick's non-interpolable writes) and are
// always carried in full, never delta'd against the baseline.
type Delta struct {
	Added   []EntityComponents
	Changed []changedEntity
	Removed []uint32
	Forced  []ForcedComponent
}

type changedEntity struct {
	NetID   uint32
	Payload []byte
}

// DeltaEncode computes the Delta that turns baseline into current. Both
// TickStates must already satisfy the ascending-net_id ordering invariant.
func DeltaEncode(baseline, current *TickState) Delta {
	var d Delta
	d.Forced = current.Forced

	i, j := 0, 0
	for i < len(baseline.Entities) && j < len(current.Entities) {
		a, b := baseline.Entities[i], current.Entities[j]
		switch {
		case a.NetID < b.NetID:
			d.Removed = append(d.Removed, a.NetID)
			i++
		case a.NetID > b.NetID:
			d.Added = append(d.Added, b)
			j++
		default:
			if !a.Components.Equal(&b.Components) {
				var buf bytes.Buffer
				netcomp.DeltaEncode(&a.Components, &b.Components, &buf)
				d.Changed = append(d.Changed, changedEntity{NetID: a.NetID, Payload: buf.Bytes()})
			}
			i++
			j++
		}
	}
	for ; i < len(baseline.Entities); i++ {
		d.Removed = append(d.Removed, baseline.Entities[i].NetID)
	}
	for ; j < len(current.Entities); j++ {
		d.Added = append(d.Added, current.Entities[j])
	}
	return d
}

// Apply merges d into baseline and returns the resulting, ascending-sorted
// TickState. baseline is not mutated.
func Apply(baseline *TickState, d Delta) (TickState, error) {
	byID := make(map[uint32]EntityComponents, len(baseline.Entities))
	for _, e := range baseline.Entities {
		byID[e.NetID] = e
	}
	for _, id := range d.Removed {
		delete(byID, id)
	}
	for _, e := range d.Added {
		byID[e.NetID] = e
	}
	for _, c := range d.Changed {
		e, ok := byID[c.NetID]
		if !ok {
			return TickState{}, fmt.Errorf("tickstate: delta references unknown entity %d", c.NetID)
		}
		if err := netcomp.DeltaApply(&e.Components, bytes.NewReader(c.Payload)); err != nil {
			return TickState{}, fmt.Errorf("tickstate: apply delta for entity %d: %w", c.NetID, err)
		}
		byID[c.NetID] = e
	}

	result := TickState{Entities: make([]EntityComponents, 0, len(byID)), Forced: d.Forced}
	for _, e := range byID {
		result.Entities = append(result.Entities, e)
	}
	result.Sort()
	return result, nil
}

// Encode writes d in its wire form: length-prefixed Added, Changed (each
// payload itself length-prefixed since a netcomp delta payload is
// variable-width), Removed, and Forced sequences.
func (d *Delta) Encode(buf *bytes.Buffer) {
	putUint32(buf, uint32(len(d.Added)))
	for _, e := range d.Added {
		putUint32(buf, e.NetID)
		e.Components.Encode(buf)
	}

	putUint32(buf, uint32(len(d.Changed)))
	for _, c := range d.Changed {
		putUint32(buf, c.NetID)
		putUint32(buf, uint32(len(c.Payload)))
		buf.Write(c.Payload)
	}

	putUint32(buf, uint32(len(d.Removed)))
	for _, id := range d.Removed {
		putUint32(buf, id)
	}

	putUint32(buf, uint32(len(d.Forced)))
	for _, f := range d.Forced {
		putUint32(buf, f.NetID)
		buf.WriteByte(byte(f.Type))
	}
}

// DecodeDelta reads a Delta written by Encode.
func DecodeDelta(r *bytes.Reader) (Delta, error) {
	var d Delta

	n, err := getUint32(r)
	if err != nil {
		return Delta{}, fmt.Errorf("tickstate: read delta added count: %w", err)
	}
	d.Added = make([]EntityComponents, 0, n)
	for i := uint32(0); i < n; i++ {
		netID, err := getUint32(r)
		if err != nil {
			return Delta{}, fmt.Errorf("tickstate: read delta added net_id: %w", err)
		}
		comps, err := netcomp.Decode(r)
		if err != nil {
			return Delta{}, fmt.Errorf("tickstate: read delta added components: %w", err)
		}
		d.Added = append(d.Added, EntityComponents{NetID: netID, Components: comps})
	}

	nc, err := getUint32(r)
	if err != nil {
		return Delta{}, fmt.Errorf("tickstate: read delta changed count: %w", err)
	}
	d.Changed = make([]changedEntity, 0, nc)
	for i := uint32(0); i < nc; i++ {
		netID, err := getUint32(r)
		if err != nil {
			return Delta{}, fmt.Errorf("tickstate: read delta changed net_id: %w", err)
		}
		plen, err := getUint32(r)
		if err != nil {
			return Delta{}, fmt.Errorf("tickstate: read delta payload length: %w", err)
		}
		payload := make([]byte, plen)
		if plen > 0 {
			if _, err := r.Read(payload); err != nil {
				return Delta{}, fmt.Errorf("tickstate: read delta payload: %w", err)
			}
		}
		d.Changed = append(d.Changed, changedEntity{NetID: netID, Payload: payload})
	}

	nr, err := getUint32(r)
	if err != nil {
		return Delta{}, fmt.Errorf("tickstate: read delta removed count: %w", err)
	}
	d.Removed = make([]uint32, 0, nr)
	for i := uint32(0); i < nr; i++ {
		id, err := getUint32(r)
		if err != nil {
			return Delta{}, fmt.Errorf("tickstate: read delta removed net_id: %w", err)
		}
		d.Removed = append(d.Removed, id)
	}

	nf, err := getUint32(r)
	if err != nil {
		return Delta{}, fmt.Errorf("tickstate: read delta forced count: %w", err)
	}
	d.Forced = make([]ForcedComponent, 0, nf)
	for i := uint32(0); i < nf; i++ {
		netID, err := getUint32(r)
		if err != nil {
			return Delta{}, fmt.Errorf("tickstate: read delta forced net_id: %w", err)
		}
		typeByte, err := r.ReadByte()
		if err != nil {
			return Delta{}, fmt.Errorf("tickstate: read delta forced type: %w", err)
		}
		d.Forced = append(d.Forced, ForcedComponent{NetID: netID, Type: netcomp.ComponentType(typeByte)})
	}

	return d, nil
}
