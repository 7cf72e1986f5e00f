package network

import (
	"github.com/automoto/elfwalk-mp/shared/messages"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
)

type inputSlot struct {
	tick  netconfig.Tick
	dir   netconfig.Direction
	valid bool
}

// InputBuffer holds captured input samples keyed by tick. A missing tick is
// reported as missing by Get; Sample turns it into the explicit "no direction"
// default so callers never reuse an older sample for a newer tick.
type InputBuffer struct {
	slots  []inputSlot
	latest netconfig.Tick
	any    bool
}

// NewInputBuffer creates a buffer retaining the last size ticks.
func NewInputBuffer(size int) *InputBuffer {
	if size < 1 {
		size = 1
	}
	return &InputBuffer{slots: make([]inputSlot, size)}
}

// Capacity returns how many ticks the buffer retains.
func (b *InputBuffer) Capacity() int {
	return len(b.slots)
}

// Store records the sample for tick, replacing any sample already held there.
func (b *InputBuffer) Store(tick netconfig.Tick, dir netconfig.Direction) {
	b.slots[int(tick)%len(b.slots)] = inputSlot{tick: tick, dir: dir, valid: true}
	if !b.any || tick > b.latest {
		b.latest = tick
		b.any = true
	}
}

// Get returns the sample stored for tick. Returns false if the tick was never
// stored or its slot has been reused by a newer tick.
func (b *InputBuffer) Get(tick netconfig.Tick) (netconfig.Direction, bool) {
	slot := b.slots[int(tick)%len(b.slots)]
	if !slot.valid || slot.tick != tick {
		return netconfig.Direction{}, false
	}
	return slot.dir, true
}

// Sample returns the sample for tick, or the zero Direction when none exists.
func (b *InputBuffer) Sample(tick netconfig.Tick) netconfig.Direction {
	dir, _ := b.Get(tick)
	return dir
}

// Latest returns the newest tick stored.
func (b *InputBuffer) Latest() (netconfig.Tick, bool) {
	return b.latest, b.any
}

// Window returns up to n samples ending at tick (inclusive), oldest first.
// Missing ticks are skipped.
func (b *InputBuffer) Window(tick netconfig.Tick, n int) []messages.InputSample {
	if n > len(b.slots) {
		n = len(b.slots)
	}
	start := netconfig.Tick(0)
	if int(tick)+1 > n {
		start = tick + 1 - netconfig.Tick(n)
	}
	out := make([]messages.InputSample, 0, n)
	for t := start; t <= tick; t++ {
		if dir, ok := b.Get(t); ok {
			out = append(out, messages.InputSample{Tick: t, Direction: dir})
		}
	}
	return out
}

// Clear drops every stored sample.
func (b *InputBuffer) Clear() {
	clear(b.slots)
	b.latest = 0
	b.any = false
}
