package network

import (
	"errors"
	"fmt"

	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/leap-fish/necs/esync"
)

var (
	// ErrForeignAuthority marks replicated state whose claimed owner does not
	// match the entity it arrived on.
	ErrForeignAuthority = errors.New("foreign authority")
	// ErrSpoofedInput marks input claiming another player's identity.
	ErrSpoofedInput = errors.New("input identity does not match connection")
)

// Identity is the local peer's confirmed identity on the client.
type Identity struct {
	PlayerID  netconfig.PlayerID
	NetworkID esync.NetworkId
}

// CheckSnapshotAuthority rejects a snapshot that pairs the local player's
// identity with another entity, or the local entity with another identity.
func CheckSnapshotAuthority(local Identity, snap Snapshot) error {
	if snap.PlayerID == local.PlayerID && snap.NetworkID != local.NetworkID {
		return fmt.Errorf("player %d replicated on entity %d, expected %d: %w",
			snap.PlayerID, snap.NetworkID, local.NetworkID, ErrForeignAuthority)
	}
	if snap.NetworkID == local.NetworkID && snap.PlayerID != local.PlayerID {
		return fmt.Errorf("entity %d claims player %d, expected %d: %w",
			snap.NetworkID, snap.PlayerID, local.PlayerID, ErrForeignAuthority)
	}
	return nil
}

// CheckInputAuthority rejects input whose claimed identity differs from the
// identity confirmed for the sending connection.
func CheckInputAuthority(conn, claimed netconfig.PlayerID) error {
	if conn != claimed {
		return fmt.Errorf("connection %d sent input for %d: %w", conn, claimed, ErrSpoofedInput)
	}
	return nil
}
