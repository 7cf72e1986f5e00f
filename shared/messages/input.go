package messages

import "github.com/automoto/elfwalk-mp/shared/netconfig"

// InputSample is the input a client captured for one of its ticks.
type InputSample struct {
	Tick      netconfig.Tick
	Direction netconfig.Direction
}

// PlayerInput is sent from client to server every tick. It repeats the most
// recent samples so a single lost message does not cost the server a tick.
type PlayerInput struct {
	PlayerID netconfig.PlayerID // Claimed identity, checked against the connection
	Samples  []InputSample      // Ascending by Tick
}
