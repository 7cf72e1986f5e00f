package systems

import (
	"github.com/automoto/elfwalk-mp/network"
	"github.com/automoto/elfwalk-mp/shared/messages"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
)

// SnapshotSource delivers decoded snapshot batches received from the server.
// Each batch is one replicated world, oldest first.
type SnapshotSource interface {
	DrainSnapshots() [][]network.Snapshot
}

// InputSource reports which directions are held this tick.
type InputSource interface {
	Direction() netconfig.Direction
}

// InputSender carries input batches to the server.
type InputSender interface {
	SendInput(input messages.PlayerInput) error
}

// NetState is shared by the client netcode systems. The drain phase fills
// pending; the reconcile phase consumes it later in the same tick.
type NetState struct {
	Identity func() network.Identity
	Metrics  *network.Metrics

	// ReplicationTicks is the expected snapshot spacing for new remote players.
	ReplicationTicks func() int

	// Prediction tuning for the local player.
	HistorySize int
	Tolerance   float64

	pending    []network.Snapshot
	sendFailed bool
}

func NewNetState(identity func() network.Identity, metrics *network.Metrics) *NetState {
	if metrics == nil {
		metrics = &network.Metrics{}
	}
	return &NetState{
		Identity: identity,
		Metrics:  metrics,
		ReplicationTicks: func() int {
			return netconfig.TicksFor(netconfig.ReplicationInterval, netconfig.TickRate)
		},
		HistorySize: netconfig.HistorySize,
		Tolerance:   netconfig.ReconcileTolerance,
	}
}
