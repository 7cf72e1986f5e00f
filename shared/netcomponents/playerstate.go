package netcomponents

import (
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

type PlayerStateData struct {
	ServerTick netconfig.Tick // Server tick the position was produced on (interpolation key)
	InputTick  netconfig.Tick // Last client input tick applied by the server (reconciliation key)
	HasInput   bool           // False until the server has consumed at least one input
}

var PlayerState = donburi.NewComponentType[PlayerStateData]()
