// Package movement is the deterministic motion core shared by the server
// simulation and the client: swept collision against wall segments, the
// slide/flip/stop wall-interaction policies, and player input integration.
package movement

// Player input-integration constants.
const (
	TurnAccel     float32 = 1.25
	TurnFriction  float32 = 0.25
	MoveAccel     float32 = 1000.0
	MoveFriction  float32 = 10.0
	BackAccel     float32 = 500.0
	StrafeAccel   float32 = 900.0
	MinSpeed      float32 = 5.0
	DashSpeed     float32 = 600.0
	DashDurationS float32 = 0.3
	DashCooldownS float32 = 5.0
)

// Bouncy-enemy AI integration constants.
const (
	EnemyMoveAccel float32 = 400.0
	EnemyDamping   float32 = -4.0
)

// StepbackUnits is the fixed pullback distance from a wall contact point,
// in world units, used to avoid tunneling re-contact on the next frame.
// Kept as a var (not const) so it is a tunable: 10 is large relative to
// tile size (~32 units) and an implementer may
// want to adjust it.
var StepbackUnits float32 = 10.0

// MaxSlideDepth bounds the slide-decomposition recursion so concave corners
// terminate in bounded time.
const MaxSlideDepth = 4
