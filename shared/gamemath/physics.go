package gamemath

import (
	stdmath "math"

	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/yohamta/donburi/features/math"
)

// ApplyMovement advances pos by one tick of input. Each active direction adds
// netconfig.MoveSpeed on its axis; diagonals are the plain vector sum. It reads
// nothing but its arguments, so every peer replaying the same inputs from the
// same start derives the same trajectory. Must stay identical on client and
// server.
func ApplyMovement(pos math.Vec2, dir netconfig.Direction) math.Vec2 {
	if dir.Up {
		pos.Y += netconfig.MoveSpeed
	}
	if dir.Down {
		pos.Y -= netconfig.MoveSpeed
	}
	if dir.Left {
		pos.X -= netconfig.MoveSpeed
	}
	if dir.Right {
		pos.X += netconfig.MoveSpeed
	}
	return pos
}

// Lerp returns the point at fraction t along from->to. t is clamped to [0, 1].
func Lerp(from, to math.Vec2, t float64) math.Vec2 {
	t = Clamp01(t)
	return math.Vec2{
		X: from.X + (to.X-from.X)*t,
		Y: from.Y + (to.Y-from.Y)*t,
	}
}

// Clamp01 clamps t to [0, 1].
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b math.Vec2) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return stdmath.Sqrt(dx*dx + dy*dy)
}
