package netcomponents

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
)

// PlayerPositionData is the only mutable simulation state of a player. The
// server owns the authoritative copy; a client owns a predicted copy of its own
// player and a display copy of every remote player.
type PlayerPositionData struct {
	X, Y float64
}

var PlayerPosition = donburi.NewComponentType[PlayerPositionData]()

// Vec returns the position as a vector.
func (p PlayerPositionData) Vec() math.Vec2 {
	return math.Vec2{X: p.X, Y: p.Y}
}

// Set overwrites the position from a vector.
func (p *PlayerPositionData) Set(v math.Vec2) {
	p.X = v.X
	p.Y = v.Y
}

// LerpPlayerPosition interpolates between two positions
func LerpPlayerPosition(from, to PlayerPositionData, t float64) *PlayerPositionData {
	return &PlayerPositionData{
		X: from.X + (to.X-from.X)*t,
		Y: from.Y + (to.Y-from.Y)*t,
	}
}
