package components

import (
	"github.com/automoto/elfwalk-mp/network"
	"github.com/yohamta/donburi"
)

// NetInterpData stores interpolation state for smooth rendering of remote
// networked entities between server snapshots.
type NetInterpData struct {
	Interp *network.Interpolator
}

var NetInterp = donburi.NewComponentType[NetInterpData]()
