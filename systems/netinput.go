package systems

import (
	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/network"
	"github.com/automoto/elfwalk-mp/shared/messages"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/automoto/elfwalk-mp/sim"
	"github.com/yohamta/donburi/ecs"
)

// NewInputCaptureSystem returns the "write inputs" phase. It polls src once
// per tick and stores the sample for the local predicted entity only.
func NewInputCaptureSystem(ctx *sim.Context, src InputSource) func(*ecs.ECS) {
	return func(_ *ecs.ECS) {
		p := localPredictor(ctx)
		if p == nil {
			return
		}
		p.Capture(ctx.Tick, src.Direction())
	}
}

// NewInputSendSystem returns the send phase. Every tick it sends the most
// recent window of buffered samples. A failed send is counted and logged once
// per failure streak; it is never retried.
func NewInputSendSystem(ctx *sim.Context, state *NetState, sender InputSender) func(*ecs.ECS) {
	log := ctx.Log.Named("input")

	return func(_ *ecs.ECS) {
		p := localPredictor(ctx)
		if p == nil {
			return
		}
		samples := p.Inputs.Window(ctx.Tick, netconfig.InputWindow)
		if len(samples) == 0 {
			return
		}

		err := sender.SendInput(messages.PlayerInput{PlayerID: ctx.Local, Samples: samples})
		if err != nil {
			if !state.sendFailed {
				log.Warnw("input send failed", "tick", ctx.Tick, "error", err)
			}
			state.sendFailed = true
			return
		}
		if state.sendFailed {
			log.Infow("input send recovered", "tick", ctx.Tick)
		}
		state.sendFailed = false
	}
}

func localPredictor(ctx *sim.Context) *network.Predictor {
	if ctx.Local == 0 {
		return nil
	}
	entry, ok := ctx.Player(ctx.Local)
	if !ok || components.Control.Get(entry).Kind != components.ControlPredictedLocal {
		return nil
	}
	return components.Prediction.Get(entry).Predictor
}
