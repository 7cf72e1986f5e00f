package network

import (
	"github.com/automoto/elfwalk-mp/shared/gamemath"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/yohamta/donburi/features/math"
)

// SnapshotPoint is an authoritative position received for a remote entity.
type SnapshotPoint struct {
	Tick     netconfig.Tick
	Position math.Vec2
}

// Interpolator smooths a remote entity between the two most recent
// authoritative snapshots. It never extrapolates: once the factor reaches one
// the display position holds at the newest snapshot until another arrives.
type Interpolator struct {
	older, newer SnapshotPoint
	count        int
	sinceNewer   int // local ticks since newer was received
	interval     int // expected ticks between snapshots
}

// NewInterpolator creates an interpolator expecting a snapshot every interval
// ticks.
func NewInterpolator(interval int) *Interpolator {
	if interval < 1 {
		interval = 1
	}
	return &Interpolator{interval: interval}
}

// Push records a newly received snapshot. Snapshots whose tick is not newer
// than the held newer snapshot are discarded and false is returned.
func (ip *Interpolator) Push(tick netconfig.Tick, pos math.Vec2) bool {
	if ip.count > 0 && tick <= ip.newer.Tick {
		return false
	}
	point := SnapshotPoint{Tick: tick, Position: pos}
	switch ip.count {
	case 0:
		ip.older = point
		ip.newer = point
		ip.count = 1
	default:
		ip.older = ip.newer
		ip.newer = point
		ip.count = 2
	}
	ip.sinceNewer = 0
	return true
}

// Advance moves local time forward by one tick.
func (ip *Interpolator) Advance() {
	if ip.count == 0 {
		return
	}
	ip.sinceNewer++
}

// Interval returns the expected spacing between snapshots in ticks. A dropped
// snapshot widens the held pair but does not slow the display down.
func (ip *Interpolator) Interval() int {
	return ip.interval
}

// Factor returns the interpolation fraction in [0, 1].
func (ip *Interpolator) Factor() float64 {
	if ip.count < 2 {
		return 1
	}
	return gamemath.Clamp01(float64(ip.sinceNewer) / float64(ip.Interval()))
}

// Position returns the display position. Returns false before any snapshot.
func (ip *Interpolator) Position() (math.Vec2, bool) {
	switch ip.count {
	case 0:
		return math.Vec2{}, false
	case 1:
		return ip.newer.Position, true
	}
	return gamemath.Lerp(ip.older.Position, ip.newer.Position, ip.Factor()), true
}

// Snapshots returns the held (older, newer) pair and how many are valid.
func (ip *Interpolator) Snapshots() (older, newer SnapshotPoint, n int) {
	return ip.older, ip.newer, ip.count
}
