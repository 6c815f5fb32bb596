// Package playerinput defines the input bitset a client sends each frame and
// the duration it applies for.
package playerinput

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Bit enumerates every input key as a bitset position.
type Bit uint16

const (
	Left Bit = 1 << iota
	Right
	Forward
	Back
	Strafe
	Flip
	Dash
	Item1
	Item2
	Item3
	Equip
)

// MaxDurationS bounds TimedPlayerInput.Duration to a sane ceiling — a
// malformed or malicious client
// cannot advance the simulation by more than this in a single input.
const MaxDurationS float32 = 1.0

// TimedPlayerInput is one input sample: a bitset of held keys, plus how long
// it should be considered active.
type TimedPlayerInput struct {
	DurationS float32
	Input     Bit
}

// Held reports whether bit is set in i.Input.
func (i TimedPlayerInput) Held(bit Bit) bool { return i.Input&bit != 0 }

// Clamp returns i with Duration clamped to [0, MaxDurationS] and any unknown
// bits (outside the declared Bit constants) masked off.
func (i TimedPlayerInput) Clamp() TimedPlayerInput {
	if i.DurationS < 0 {
		i.DurationS = 0
	}
	if i.DurationS > MaxDurationS {
		i.DurationS = MaxDurationS
	}
	i.Input &= knownBits
	return i
}

const knownBits = Left | Right | Forward | Back | Strafe | Flip | Dash | Item1 | Item2 | Item3 | Equip

// Encode appends i's wire form to buf: duration_s then the input bitset.
func (i TimedPlayerInput) Encode(buf *bytes.Buffer) {
	var fb [4]byte
	binary.LittleEndian.PutUint32(fb[:], math.Float32bits(i.DurationS))
	buf.Write(fb[:])
	var ib [2]byte
	binary.LittleEndian.PutUint16(ib[:], uint16(i.Input))
	buf.Write(ib[:])
}

// Decode reads a TimedPlayerInput written by Encode and clamps it, since
// input arrives from an untrusted peer.
func Decode(r *bytes.Reader) (TimedPlayerInput, error) {
	var fb [4]byte
	if _, err := r.Read(fb[:]); err != nil {
		return TimedPlayerInput{}, err
	}
	var ib [2]byte
	if _, err := r.Read(ib[:]); err != nil {
		return TimedPlayerInput{}, err
	}
	i := TimedPlayerInput{
		DurationS: math.Float32frombits(binary.LittleEndian.Uint32(fb[:])),
		Input:     Bit(binary.LittleEndian.Uint16(ib[:])),
	}
	return i.Clamp(), nil
}
