// Package netconfig defines lightweight types shared between client and server
// for network serialization. It must have zero dependencies on ebiten or any
// graphics library so the dedicated server binary stays headless.
package netconfig

import "time"

// Tick identifies one fixed-timestep simulation step. It is the ordering key
// for reconciliation and the correlation key between predicted and
// authoritative records.
type Tick uint32

// PlayerID is the network-wide identity of a confirmed peer. It is assigned by
// the server when a join is accepted and never changes for that connection.
type PlayerID uint64

const (
	// MoveSpeed is the per-axis displacement applied for each active direction.
	MoveSpeed = 0.4

	// TickRate is the fixed simulation rate shared by client and server.
	TickRate = 60

	// ReplicationInterval is how often the server pushes world snapshots.
	ReplicationInterval = 100 * time.Millisecond

	// HistorySize is the prediction history depth in ticks (~2s at 60 Hz).
	HistorySize = 128

	// InputWindow is how many recent samples each input message repeats.
	InputWindow = 8

	// ReconcileTolerance is the largest prediction error accepted as a match.
	ReconcileTolerance = 0.01

	// ClientTimeout disconnects confirmed peers that stop sending input.
	ClientTimeout = 3 * time.Second
)

// Direction is the canonical input value: which of the four directions are
// held during a tick. The zero value means no direction is pressed.
type Direction struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

// IsZero reports whether no direction is pressed.
func (d Direction) IsZero() bool {
	return !d.Up && !d.Down && !d.Left && !d.Right
}

func (d Direction) String() string {
	if d.IsZero() {
		return "none"
	}
	s := ""
	for _, part := range []struct {
		on   bool
		name string
	}{{d.Up, "up"}, {d.Down, "down"}, {d.Left, "left"}, {d.Right, "right"}} {
		if !part.on {
			continue
		}
		if s != "" {
			s += "+"
		}
		s += part.name
	}
	return s
}

// TicksFor converts a duration to a whole number of ticks at rate, never less
// than one.
func TicksFor(d time.Duration, rate int) int {
	if rate <= 0 {
		rate = TickRate
	}
	n := int(d * time.Duration(rate) / time.Second)
	if n < 1 {
		n = 1
	}
	return n
}
