package systems

import (
	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/network"
	"github.com/automoto/elfwalk-mp/shared/netcomponents"
	"github.com/automoto/elfwalk-mp/sim"
	"github.com/yohamta/donburi/ecs"
)

// NewReconcileSystem returns the reconciliation phase. Snapshots staged by the
// drain phase are compared against prediction history in arrival order.
// Divergence is corrected silently; snapshots older than the retained history
// are reported as desync and re-anchored. A snapshot ahead of the local tick
// moves the local tick forward.
func NewReconcileSystem(ctx *sim.Context, state *NetState) func(*ecs.ECS) {
	log := ctx.Log.Named("reconcile")

	return func(_ *ecs.ECS) {
		if len(state.pending) == 0 {
			return
		}
		entry, ok := ctx.Player(ctx.Local)
		if !ok || components.Control.Get(entry).Kind != components.ControlPredictedLocal {
			return
		}
		p := components.Prediction.Get(entry).Predictor
		pos := netcomponents.PlayerPosition.Get(entry)

		for _, snap := range state.pending {
			oldest, _ := p.History.Oldest()
			next, res := p.Reconcile(ctx.Tick, snap.ReconcileTick(), snap.Position, pos.Vec())
			pos.Set(next)
			state.Metrics.RecordReconcile(res)

			switch res.Outcome {
			case network.OutcomeCorrected:
				log.Debugw("corrected prediction",
					"tick", res.Tick, "error", res.Error, "replayed", res.Replayed)
			case network.OutcomeDesync:
				log.Warnw("snapshot older than prediction history",
					"tick", res.Tick, "oldest", oldest, "local", ctx.Tick, "error", res.Error)
			case network.OutcomeResync:
				log.Infow("local tick behind server input tick, resyncing",
					"local", ctx.Tick, "tick", res.Tick)
				ctx.Tick = res.Tick
			}
		}
		state.pending = state.pending[:0]
	}
}
