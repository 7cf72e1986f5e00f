package core

import (
	"time"

	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/shared/gamemath"
	"github.com/automoto/elfwalk-mp/shared/messages"
	"github.com/automoto/elfwalk-mp/shared/netcomponents"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/automoto/elfwalk-mp/sim"
	"github.com/automoto/elfwalk-mp/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// BufferInput stores received samples in a player's input queue. The first
// sample ever received anchors the cursor. Samples behind the cursor have
// already been consumed (with the default) and are counted as late.
func BufferInput(in *components.ServerInputData, samples []messages.InputSample, now time.Time) (accepted, late int) {
	in.LastReceived = now
	for _, sample := range samples {
		if !in.Anchored {
			in.Cursor = sample.Tick
			in.Anchored = true
		}
		if sample.Tick < in.Cursor {
			late++
			continue
		}
		in.Buffer.Store(sample.Tick, sample.Direction)
		accepted++
	}
	return accepted, late
}

// StepResult reports what one authoritative step consumed.
type StepResult struct {
	Consumed int  // client ticks consumed
	Starved  bool // no input available; the default was applied
}

// StepPlayer advances one player by one server tick. Each server tick
// consumes exactly one client tick from the queue, using the explicit "no
// direction" default for a tick whose sample never arrived. When the backlog
// grows beyond the input window, the extra ticks are consumed as well so the
// player does not fall further behind. A player with nothing queued gets the
// default applied without consuming a tick.
func StepPlayer(in *components.ServerInputData, pos *netcomponents.PlayerPositionData, state *netcomponents.PlayerStateData) StepResult {
	latest, ok := in.Buffer.Latest()
	if !in.Anchored || !ok || latest < in.Cursor {
		pos.Set(gamemath.ApplyMovement(pos.Vec(), netconfig.Direction{}))
		return StepResult{Starved: true}
	}

	if backlog := int(latest-in.Cursor) + 1; backlog > in.Buffer.Capacity() {
		// The ring no longer holds the cursor's tick; re-anchor on the
		// newest window.
		in.Cursor = latest + 1 - netconfig.Tick(netconfig.InputWindow)
	}

	steps := 1
	if backlog := int(latest-in.Cursor) + 1; backlog > netconfig.InputWindow {
		steps += backlog - netconfig.InputWindow
	}

	p := pos.Vec()
	for i := 0; i < steps; i++ {
		p = gamemath.ApplyMovement(p, in.Buffer.Sample(in.Cursor))
		state.InputTick = in.Cursor
		state.HasInput = true
		in.Cursor++
	}
	pos.Set(p)
	return StepResult{Consumed: steps}
}

// NewAuthoritativeSystem returns the server step. Entities predicted by this
// peer (the host's own player in a combined topology) are skipped; the
// prediction system advances those.
func NewAuthoritativeSystem(ctx *sim.Context, metrics *Metrics) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		tags.Player.Each(e.World, func(entry *donburi.Entry) {
			state := netcomponents.PlayerState.Get(entry)
			state.ServerTick = ctx.Tick

			if components.Control.Get(entry).Kind == components.ControlPredictedLocal {
				return
			}
			if !entry.HasComponent(components.ServerInput) {
				return
			}

			res := StepPlayer(
				components.ServerInput.Get(entry),
				netcomponents.PlayerPosition.Get(entry),
				state,
			)
			if res.Starved {
				metrics.StarvedTicks.Add(1)
			}
			if res.Consumed > 1 {
				metrics.CatchUpTicks.Add(int64(res.Consumed - 1))
			}
		})
	}
}
