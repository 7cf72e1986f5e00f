package sim

import (
	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/yohamta/donburi/features/events"
)

// PlayerSpawned is published when a player entity is created on this peer.
type PlayerSpawned struct {
	ID   netconfig.PlayerID
	Kind components.ControlKind
	Tick netconfig.Tick
}

// PlayerDespawned is published when a player entity is destroyed on this peer.
type PlayerDespawned struct {
	ID     netconfig.PlayerID
	Kind   components.ControlKind
	Tick   netconfig.Tick
	Reason string
}

var (
	PlayerSpawnedEvent   = events.NewEventType[PlayerSpawned]()
	PlayerDespawnedEvent = events.NewEventType[PlayerDespawned]()
)

// FlushEvents delivers every queued lifecycle event to its subscribers.
func (c *Context) FlushEvents() {
	events.ProcessAllEvents(c.ECS.World)
}
