package systems

import (
	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/network"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/automoto/elfwalk-mp/sim"
	"github.com/yohamta/donburi/ecs"
)

// NewSnapshotSystem returns the drain phase. It applies the authority check to
// every received snapshot, spawns players appearing in replication, feeds
// remote snapshots to their interpolators, stages local snapshots for
// reconciliation and despawns players absent from the latest world.
func NewSnapshotSystem(ctx *sim.Context, state *NetState, src SnapshotSource) func(*ecs.ECS) {
	log := ctx.Log.Named("snapshot")
	present := make(map[netconfig.PlayerID]bool)

	return func(_ *ecs.ECS) {
		state.pending = state.pending[:0]

		local := state.Identity()
		if local.PlayerID == 0 {
			// Not joined yet; nothing received so far can be attributed.
			src.DrainSnapshots()
			return
		}
		ctx.Local = local.PlayerID

		batches := src.DrainSnapshots()
		for _, batch := range batches {
			clear(present)

			for _, snap := range batch {
				if err := network.CheckSnapshotAuthority(local, snap); err != nil {
					state.Metrics.SnapshotsRejected.Add(1)
					log.Warnw("rejected snapshot", "error", err)
					continue
				}
				if present[snap.PlayerID] {
					state.Metrics.SnapshotsRejected.Add(1)
					log.Warnw("rejected snapshot", "player", snap.PlayerID, "networkID", snap.NetworkID,
						"error", "player replicated twice in one world")
					continue
				}
				present[snap.PlayerID] = true

				if snap.PlayerID == local.PlayerID {
					applyLocalSnapshot(ctx, state, snap)
				} else {
					applyRemoteSnapshot(ctx, state, snap)
				}
			}

			for _, id := range ctx.PlayerIDs() {
				if !present[id] {
					log.Infow("player left replication", "player", id)
					ctx.OnPlayerDisconnected(id, "despawned")
				}
			}
		}

		ctx.FlushEvents()
	}
}

func applyLocalSnapshot(ctx *sim.Context, state *NetState, snap network.Snapshot) {
	entry, ok := ctx.Player(snap.PlayerID)
	if !ok {
		entry = ctx.OnPlayerConfirmed(snap.PlayerID, sim.SpawnOptions{
			Kind:        components.ControlPredictedLocal,
			Position:    snap.Position,
			NetworkID:   snap.NetworkID,
			HistorySize: state.HistorySize,
			Tolerance:   state.Tolerance,
		})
	}
	if components.Control.Get(entry).Kind != components.ControlPredictedLocal {
		state.Metrics.SnapshotsRejected.Add(1)
		ctx.Log.Warnw("local snapshot for a non-predicted entity", "player", snap.PlayerID)
		return
	}
	if snap.HasInput {
		state.pending = append(state.pending, snap)
	}
}

func applyRemoteSnapshot(ctx *sim.Context, state *NetState, snap network.Snapshot) {
	entry, ok := ctx.Player(snap.PlayerID)
	if !ok {
		entry = ctx.OnPlayerConfirmed(snap.PlayerID, sim.SpawnOptions{
			Kind:        components.ControlInterpolatedRemote,
			Position:    snap.Position,
			NetworkID:   snap.NetworkID,
			InterpTicks: state.ReplicationTicks(),
		})
	}
	if components.Control.Get(entry).Kind != components.ControlInterpolatedRemote {
		state.Metrics.SnapshotsRejected.Add(1)
		ctx.Log.Warnw("remote snapshot for a non-interpolated entity", "player", snap.PlayerID)
		return
	}
	if !components.NetInterp.Get(entry).Interp.Push(snap.InterpTick(), snap.Position) {
		state.Metrics.InterpDiscarded.Add(1)
	}
}
