package protocol

import (
	"github.com/automoto/elfwalk-mp/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDPlayerId       uint = 10
	SyncIDPlayerPosition uint = 11
	SyncIDPlayerState    uint = 12
)

// Interpolation IDs (uint8 for WithInterpFn)
const (
	InterpIDPlayerPosition uint8 = 11
)

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both server and client before any network operations.
func RegisterComponents() error {
	if err := esync.RegisterComponent(
		SyncIDPlayerId,
		netcomponents.PlayerIdData{},
		netcomponents.PlayerId,
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDPlayerPosition,
		netcomponents.PlayerPositionData{},
		netcomponents.PlayerPosition,
		esync.WithInterpFn(InterpIDPlayerPosition, netcomponents.LerpPlayerPosition),
	); err != nil {
		return err
	}

	// PlayerState: no interpolation (tick counters)
	if err := esync.RegisterComponent(
		SyncIDPlayerState,
		netcomponents.PlayerStateData{},
		netcomponents.PlayerState,
	); err != nil {
		return err
	}

	return nil
}
