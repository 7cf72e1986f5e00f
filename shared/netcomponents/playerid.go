package netcomponents

import (
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// PlayerIdData tags a replicated entity with the identity of the peer that
// owns it.
type PlayerIdData struct {
	ID netconfig.PlayerID
}

var PlayerId = donburi.NewComponentType[PlayerIdData]()
