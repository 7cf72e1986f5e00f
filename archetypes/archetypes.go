package archetypes

import (
	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/shared/netcomponents"
	"github.com/automoto/elfwalk-mp/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var (
	// ServerPlayer is the authoritative copy of a confirmed peer.
	ServerPlayer = newArchetype(
		tags.Player,
		netcomponents.PlayerId,
		netcomponents.PlayerPosition,
		netcomponents.PlayerState,
		components.Control,
		components.ServerInput,
	)
	// PredictedPlayer is the client's own entity.
	PredictedPlayer = newArchetype(
		tags.Player,
		tags.LocalPlayer,
		netcomponents.PlayerId,
		netcomponents.PlayerPosition,
		netcomponents.PlayerState,
		components.Control,
		components.Prediction,
	)
	// InterpolatedPlayer is the display copy of a remote peer's entity.
	InterpolatedPlayer = newArchetype(
		tags.Player,
		tags.RemotePlayer,
		netcomponents.PlayerId,
		netcomponents.PlayerPosition,
		netcomponents.PlayerState,
		components.Control,
		components.NetInterp,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(ecs *ecs.ECS, cs ...donburi.IComponentType) *donburi.Entry {
	e := ecs.World.Entry(ecs.World.Create(
		append(append([]donburi.IComponentType{}, a.components...), cs...)...,
	))
	return e
}
