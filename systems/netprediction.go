package systems

import (
	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/shared/netcomponents"
	"github.com/automoto/elfwalk-mp/sim"
	"github.com/automoto/elfwalk-mp/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// NewPredictionSystem returns the prediction phase: the local entity advances
// by its own buffered input for the current tick.
func NewPredictionSystem(ctx *sim.Context) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		tags.LocalPlayer.Each(e.World, func(entry *donburi.Entry) {
			if components.Control.Get(entry).Kind != components.ControlPredictedLocal {
				return
			}
			p := components.Prediction.Get(entry).Predictor
			pos := netcomponents.PlayerPosition.Get(entry)
			pos.Set(p.Step(ctx.Tick, pos.Vec()))
		})
	}
}
