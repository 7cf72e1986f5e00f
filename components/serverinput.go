package components

import (
	"time"

	"github.com/automoto/elfwalk-mp/network"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// ServerInputData is the server's per-player input queue. It exists only on
// the server and is never synced.
type ServerInputData struct {
	Buffer *network.InputBuffer

	// Cursor is the next client tick the authoritative step will consume.
	Cursor   netconfig.Tick
	Anchored bool // False until the first sample arrives

	LastReceived time.Time
}

var ServerInput = donburi.NewComponentType[ServerInputData]()
