package systems

import "github.com/automoto/elfwalk-mp/sim"

// ClientIO groups the collaborators the client pipeline talks to.
type ClientIO struct {
	Snapshots SnapshotSource
	Input     InputSource
	Sender    InputSender
}

// AddClientSystems registers the client phases on ctx.ECS in tick order:
// drain network, write inputs, predict, reconcile, send, interpolate.
func AddClientSystems(ctx *sim.Context, state *NetState, io ClientIO) {
	ctx.ECS.AddSystem(NewSnapshotSystem(ctx, state, io.Snapshots))
	ctx.ECS.AddSystem(NewInputCaptureSystem(ctx, io.Input))
	ctx.ECS.AddSystem(NewPredictionSystem(ctx))
	ctx.ECS.AddSystem(NewReconcileSystem(ctx, state))
	ctx.ECS.AddSystem(NewInputSendSystem(ctx, state, io.Sender))
	ctx.ECS.AddSystem(UpdateInterpolation)
}
