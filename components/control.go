package components

import "github.com/yohamta/donburi"

// ControlKind selects how a player entity is advanced on this peer.
type ControlKind int

const (
	ControlUnowned            ControlKind = iota // advanced only by authoritative input (server)
	ControlPredictedLocal                        // owned by this peer; advanced by local input
	ControlInterpolatedRemote                    // owned elsewhere; display copy only
)

func (k ControlKind) String() string {
	switch k {
	case ControlUnowned:
		return "unowned"
	case ControlPredictedLocal:
		return "predicted"
	case ControlInterpolatedRemote:
		return "interpolated"
	}
	return "unknown"
}

type ControlData struct {
	Kind ControlKind
}

var Control = donburi.NewComponentType[ControlData]()
