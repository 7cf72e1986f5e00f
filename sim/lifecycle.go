package sim

import (
	"github.com/automoto/elfwalk-mp/archetypes"
	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/network"
	"github.com/automoto/elfwalk-mp/shared/netcomponents"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
)

// SpawnOptions configures the entity created for a confirmed player.
type SpawnOptions struct {
	Kind     components.ControlKind
	Position math.Vec2

	// NetworkID tags client-side copies with the replicated entity id. The
	// server leaves it zero; srvsync assigns ids there.
	NetworkID esync.NetworkId

	// Prediction tuning, used for ControlPredictedLocal.
	HistorySize int
	Tolerance   float64

	// Expected snapshot spacing in ticks, used for ControlInterpolatedRemote.
	InterpTicks int
}

func (o SpawnOptions) withDefaults() SpawnOptions {
	if o.HistorySize <= 0 {
		o.HistorySize = netconfig.HistorySize
	}
	if o.Tolerance <= 0 {
		o.Tolerance = netconfig.ReconcileTolerance
	}
	if o.InterpTicks <= 0 {
		o.InterpTicks = netconfig.TicksFor(netconfig.ReplicationInterval, netconfig.TickRate)
	}
	return o
}

// OnPlayerConfirmed creates the entity for a confirmed player. It is called
// by connection management once a join has been accepted (server) or once a
// player first appears in replication (client). Calling it for a player that
// already exists returns the existing entry.
func (c *Context) OnPlayerConfirmed(id netconfig.PlayerID, opts SpawnOptions) *donburi.Entry {
	if entry, ok := c.Player(id); ok {
		return entry
	}
	opts = opts.withDefaults()

	var entry *donburi.Entry
	switch opts.Kind {
	case components.ControlPredictedLocal:
		entry = archetypes.PredictedPlayer.Spawn(c.ECS)
		components.Prediction.SetValue(entry, components.PredictionData{
			Predictor: network.NewPredictor(opts.HistorySize, opts.Tolerance),
		})
	case components.ControlInterpolatedRemote:
		entry = archetypes.InterpolatedPlayer.Spawn(c.ECS)
		interp := network.NewInterpolator(opts.InterpTicks)
		components.NetInterp.SetValue(entry, components.NetInterpData{Interp: interp})
	default:
		entry = archetypes.ServerPlayer.Spawn(c.ECS)
		components.ServerInput.SetValue(entry, components.ServerInputData{
			Buffer: network.NewInputBuffer(opts.HistorySize),
		})
	}

	netcomponents.PlayerId.SetValue(entry, netcomponents.PlayerIdData{ID: id})
	netcomponents.PlayerPosition.SetValue(entry, netcomponents.PlayerPositionData{
		X: opts.Position.X,
		Y: opts.Position.Y,
	})
	netcomponents.PlayerState.SetValue(entry, netcomponents.PlayerStateData{ServerTick: c.Tick})
	components.Control.SetValue(entry, components.ControlData{Kind: opts.Kind})
	if opts.NetworkID != 0 {
		entry.AddComponent(esync.NetworkIdComponent)
		esync.NetworkIdComponent.SetValue(entry, opts.NetworkID)
	}

	c.players[id] = entry.Entity()
	PlayerSpawnedEvent.Publish(c.ECS.World, PlayerSpawned{ID: id, Kind: opts.Kind, Tick: c.Tick})
	return entry
}

// OnPlayerDisconnected destroys a player's entity together with its buffered
// inputs and prediction history. Returns false if the player was unknown.
func (c *Context) OnPlayerDisconnected(id netconfig.PlayerID, reason string) bool {
	entity, ok := c.players[id]
	delete(c.players, id)
	if !ok || !c.ECS.World.Valid(entity) {
		return false
	}

	entry := c.ECS.World.Entry(entity)
	kind := components.Control.Get(entry).Kind
	if entry.HasComponent(components.Prediction) {
		if p := components.Prediction.Get(entry).Predictor; p != nil {
			p.Destroy()
		}
	}
	if entry.HasComponent(components.ServerInput) {
		if b := components.ServerInput.Get(entry).Buffer; b != nil {
			b.Clear()
		}
	}
	c.ECS.World.Remove(entity)

	PlayerDespawnedEvent.Publish(c.ECS.World, PlayerDespawned{ID: id, Kind: kind, Tick: c.Tick, Reason: reason})
	return true
}

// Kind returns the control kind of a player.
func (c *Context) Kind(id netconfig.PlayerID) (components.ControlKind, bool) {
	entry, ok := c.Player(id)
	if !ok {
		return 0, false
	}
	return components.Control.Get(entry).Kind, true
}
