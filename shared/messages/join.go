package messages

import (
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/leap-fish/necs/esync"
)

// JoinRequest is sent by a client after connecting to request joining the game.
type JoinRequest struct {
	Version        string
	PlayerName     string
	ReconnectToken string
}

// JoinAccepted is sent by the server when a client's join request is accepted.
type JoinAccepted struct {
	PlayerID         netconfig.PlayerID
	NetworkID        esync.NetworkId
	ReconnectToken   string
	ServerName       string
	TickRate         int
	ServerTick       netconfig.Tick
	ReplicationTicks int
}

// JoinRejected is sent by the server when a client's join request is rejected
// or when a joined player is dropped for going silent.
type JoinRejected struct {
	Reason string
}
