package systems

import (
	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/shared/netcomponents"
	"github.com/automoto/elfwalk-mp/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// UpdateInterpolation moves every remote entity one tick along the segment
// between its two latest snapshots. Position is frozen at the newest snapshot
// once the factor reaches one.
func UpdateInterpolation(e *ecs.ECS) {
	tags.RemotePlayer.Each(e.World, func(entry *donburi.Entry) {
		if components.Control.Get(entry).Kind != components.ControlInterpolatedRemote {
			return
		}
		interp := components.NetInterp.Get(entry).Interp
		interp.Advance()
		if pos, ok := interp.Position(); ok {
			netcomponents.PlayerPosition.Get(entry).Set(pos)
		}
	})
}
