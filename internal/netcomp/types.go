package netcomp

import "catch/internal/mathutil"

// MaxEquippedItems bounds PlayerState.EquippedItems so the component stays a
// plain comparable value (no slice): fixed-capacity fields over dynamic ones
// in hot, frequently-copied structs.
const MaxEquippedItems = 3

// ItemID names an item kind a player can carry. 0 means no item.
type ItemID uint8

// Position is the entity's world-space location.
type Position struct {
	P mathutil.Vec2
}

// Orientation is the entity's facing angle, in radians.
type Orientation struct {
	Angle float32
}

// LinearVelocity is the entity's current velocity vector.
type LinearVelocity struct {
	V mathutil.Vec2
}

// AngularVelocity is the entity's current angular velocity, in radians/s.
type AngularVelocity struct {
	V float32
}

// ShapeKind discriminates Shape's variant.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeSquare
	ShapeRect
)

// Shape is a closed tagged union over an entity's collision/visual footprint.
// Only the fields relevant to Kind are meaningful.
type Shape struct {
	Kind       ShapeKind
	Radius     float32 // ShapeCircle
	SquareSize float32 // ShapeSquare
	RectW      float32 // ShapeRect
	RectH      float32 // ShapeRect
}

// PlayerState is the component every observer sees for a player entity.
type PlayerState struct {
	Color               uint8
	DashingTimer        float32 // seconds remaining in current dash, 0 if not dashing
	InvulnerabilityTimer float32
	EquippedItems       [MaxEquippedItems]ItemID
	IsCatcher           bool
}

// FullPlayerState is sent only to the entity's owner: information the player
// themself needs but other clients must not see.
type FullPlayerState struct {
	DashCooldown float32 // seconds remaining before Dash can be used again, 0 if ready
	HiddenItem   ItemID
}

// WallPosition describes a static wall segment's two endpoints.
type WallPosition struct {
	PosA, PosB mathutil.Vec2
}
