package network

import (
	"errors"
	"fmt"

	"github.com/automoto/elfwalk-mp/shared/netcomponents"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi/features/math"
)

// Snapshot is the authoritative state of one player entity as decoded from a
// replicated world snapshot.
type Snapshot struct {
	NetworkID  esync.NetworkId
	PlayerID   netconfig.PlayerID
	Position   math.Vec2
	ServerTick netconfig.Tick
	InputTick  netconfig.Tick
	HasInput   bool
}

// ReconcileTick is the tick a predicting client correlates this snapshot with.
func (s Snapshot) ReconcileTick() netconfig.Tick {
	return s.InputTick
}

// InterpTick is the tick an interpolating client orders this snapshot by.
func (s Snapshot) InterpTick() netconfig.Tick {
	return s.ServerTick
}

var ErrIncompleteSnapshot = errors.New("snapshot entity is missing player components")

// DecodeWorldSnapshot turns a necs world snapshot into player snapshots.
// Entities that fail to decode or lack player components are skipped and
// reported through the returned error (joined).
func DecodeWorldSnapshot(snapshot esync.WorldSnapshot) ([]Snapshot, error) {
	out := make([]Snapshot, 0, len(snapshot))
	var errs []error

	for _, ent := range snapshot {
		snap := Snapshot{NetworkID: ent.Id}
		var hasID, hasPos bool

		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				errs = append(errs, fmt.Errorf("entity %d: %w", ent.Id, err))
				continue
			}
			switch v := instance.(type) {
			case netcomponents.PlayerIdData:
				snap.PlayerID = v.ID
				hasID = true
			case netcomponents.PlayerPositionData:
				snap.Position = v.Vec()
				hasPos = true
			case netcomponents.PlayerStateData:
				snap.ServerTick = v.ServerTick
				snap.InputTick = v.InputTick
				snap.HasInput = v.HasInput
			}
		}

		if !hasID || !hasPos {
			errs = append(errs, fmt.Errorf("entity %d: %w", ent.Id, ErrIncompleteSnapshot))
			continue
		}
		out = append(out, snap)
	}
	return out, errors.Join(errs...)
}
