package netcomp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"catch/internal/mathutil"
)

func vec2(x, y float32) mathutil.Vec2 { return mathutil.Vec2{X: x, Y: y} }

func writeFloat32(buf *bytes.Buffer, v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	buf.Write(b[:])
}

func readFloat32(r *bytes.Reader) (float32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b[:])), nil
}

func writeVec2(buf *bytes.Buffer, x, y float32) {
	writeFloat32(buf, x)
	writeFloat32(buf, y)
}

func readVec2(r *bytes.Reader) (x, y float32, err error) {
	if x, err = readFloat32(r); err != nil {
		return
	}
	y, err = readFloat32(r)
	return
}

func encodePosition(v Position, buf *bytes.Buffer) {
	writeVec2(buf, v.P.X, v.P.Y)
}

func decodePosition(r *bytes.Reader) (Position, error) {
	x, y, err := readVec2(r)
	if err != nil {
		return Position{}, err
	}
	return Position{P: vec2(x, y)}, nil
}

func encodeOrientation(v Orientation, buf *bytes.Buffer) {
	writeFloat32(buf, v.Angle)
}

func decodeOrientation(r *bytes.Reader) (Orientation, error) {
	a, err := readFloat32(r)
	if err != nil {
		return Orientation{}, err
	}
	return Orientation{Angle: a}, nil
}

func encodeLinearVelocity(v LinearVelocity, buf *bytes.Buffer) {
	writeVec2(buf, v.V.X, v.V.Y)
}

func decodeLinearVelocity(r *bytes.Reader) (LinearVelocity, error) {
	x, y, err := readVec2(r)
	if err != nil {
		return LinearVelocity{}, err
	}
	return LinearVelocity{V: vec2(x, y)}, nil
}

func encodeAngularVelocity(v AngularVelocity, buf *bytes.Buffer) {
	writeFloat32(buf, v.V)
}

func decodeAngularVelocity(r *bytes.Reader) (AngularVelocity, error) {
	a, err := readFloat32(r)
	if err != nil {
		return AngularVelocity{}, err
	}
	return AngularVelocity{V: a}, nil
}

func encodeShape(v Shape, buf *bytes.Buffer) {
	buf.WriteByte(byte(v.Kind))
	switch v.Kind {
	case ShapeCircle:
		writeFloat32(buf, v.Radius)
	case ShapeSquare:
		writeFloat32(buf, v.SquareSize)
	case ShapeRect:
		writeFloat32(buf, v.RectW)
		writeFloat32(buf, v.RectH)
	}
}

func decodeShape(r *bytes.Reader) (Shape, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return Shape{}, err
	}
	s := Shape{Kind: ShapeKind(kindByte)}
	switch s.Kind {
	case ShapeCircle:
		if s.Radius, err = readFloat32(r); err != nil {
			return Shape{}, err
		}
	case ShapeSquare:
		if s.SquareSize, err = readFloat32(r); err != nil {
			return Shape{}, err
		}
	case ShapeRect:
		if s.RectW, err = readFloat32(r); err != nil {
			return Shape{}, err
		}
		if s.RectH, err = readFloat32(r); err != nil {
			return Shape{}, err
		}
	default:
		return Shape{}, fmt.Errorf("netcomp: unknown shape kind %d", kindByte)
	}
	return s, nil
}

func encodePlayerState(v PlayerState, buf *bytes.Buffer) {
	buf.WriteByte(v.Color)
	writeFloat32(buf, v.DashingTimer)
	writeFloat32(buf, v.InvulnerabilityTimer)
	for _, it := range v.EquippedItems {
		buf.WriteByte(byte(it))
	}
	if v.IsCatcher {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func decodePlayerState(r *bytes.Reader) (PlayerState, error) {
	var v PlayerState
	var err error
	if v.Color, err = r.ReadByte(); err != nil {
		return PlayerState{}, err
	}
	if v.DashingTimer, err = readFloat32(r); err != nil {
		return PlayerState{}, err
	}
	if v.InvulnerabilityTimer, err = readFloat32(r); err != nil {
		return PlayerState{}, err
	}
	for i := range v.EquippedItems {
		b, err := r.ReadByte()
		if err != nil {
			return PlayerState{}, err
		}
		v.EquippedItems[i] = ItemID(b)
	}
	catcherByte, err := r.ReadByte()
	if err != nil {
		return PlayerState{}, err
	}
	v.IsCatcher = catcherByte != 0
	return v, nil
}

func encodeFullPlayerState(v FullPlayerState, buf *bytes.Buffer) {
	writeFloat32(buf, v.DashCooldown)
	buf.WriteByte(byte(v.HiddenItem))
}

func decodeFullPlayerState(r *bytes.Reader) (FullPlayerState, error) {
	var v FullPlayerState
	var err error
	if v.DashCooldown, err = readFloat32(r); err != nil {
		return FullPlayerState{}, err
	}
	b, err := r.ReadByte()
	if err != nil {
		return FullPlayerState{}, err
	}
	v.HiddenItem = ItemID(b)
	return v, nil
}

func encodeWallPosition(v WallPosition, buf *bytes.Buffer) {
	writeVec2(buf, v.PosA.X, v.PosA.Y)
	writeVec2(buf, v.PosB.X, v.PosB.Y)
}

func decodeWallPosition(r *bytes.Reader) (WallPosition, error) {
	ax, ay, err := readVec2(r)
	if err != nil {
		return WallPosition{}, err
	}
	bx, by, err := readVec2(r)
	if err != nil {
		return WallPosition{}, err
	}
	return WallPosition{PosA: vec2(ax, ay), PosB: vec2(bx, by)}, nil
}
