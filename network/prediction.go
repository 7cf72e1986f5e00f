package network

import (
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/yohamta/donburi/features/math"
)

// InputRecord stores an input alongside the predicted position before and
// after applying it.
type InputRecord struct {
	Tick   netconfig.Tick
	Input  netconfig.Direction
	Before math.Vec2
	After  math.Vec2
}

type historySlot struct {
	record InputRecord
	valid  bool
}

// PredictionBuffer is a ring buffer that stores recent inputs and their
// predicted outcomes for server reconciliation.
type PredictionBuffer struct {
	history []historySlot
	oldest  netconfig.Tick
	newest  netconfig.Tick
	count   int
}

// NewPredictionBuffer creates a history retaining the last size ticks.
func NewPredictionBuffer(size int) *PredictionBuffer {
	if size < 1 {
		size = 1
	}
	return &PredictionBuffer{history: make([]historySlot, size)}
}

// Capacity reports how many ticks the buffer can retain.
func (pb *PredictionBuffer) Capacity() int {
	return len(pb.history)
}

// Store saves a prediction record. Records are expected in ascending tick
// order; storing an existing tick overwrites it.
func (pb *PredictionBuffer) Store(rec InputRecord) {
	idx := int(rec.Tick) % len(pb.history)
	slot := &pb.history[idx]
	if slot.valid && slot.record.Tick != rec.Tick {
		pb.count--
	}
	if !slot.valid || slot.record.Tick != rec.Tick {
		pb.count++
	}
	slot.record = rec
	slot.valid = true

	if pb.count == 1 || rec.Tick > pb.newest {
		pb.newest = rec.Tick
	}
	if pb.count == 1 || rec.Tick < pb.oldest {
		pb.oldest = rec.Tick
	}
	pb.advanceOldest()
}

// Get retrieves a stored record by tick. Returns false if not found or if the
// slot has been overwritten.
func (pb *PredictionBuffer) Get(tick netconfig.Tick) (InputRecord, bool) {
	slot := pb.history[int(tick)%len(pb.history)]
	if !slot.valid || slot.record.Tick != tick {
		return InputRecord{}, false
	}
	return slot.record, true
}

// Oldest returns the oldest retained tick.
func (pb *PredictionBuffer) Oldest() (netconfig.Tick, bool) {
	return pb.oldest, pb.count > 0
}

// Newest returns the newest retained tick.
func (pb *PredictionBuffer) Newest() (netconfig.Tick, bool) {
	return pb.newest, pb.count > 0
}

// Len reports how many records are retained.
func (pb *PredictionBuffer) Len() int {
	return pb.count
}

// DiscardThrough drops every record with tick <= t.
func (pb *PredictionBuffer) DiscardThrough(t netconfig.Tick) {
	if pb.count == 0 || t < pb.oldest {
		return
	}
	if t >= pb.newest {
		pb.Clear()
		return
	}
	for tick := pb.oldest; tick <= t; tick++ {
		idx := int(tick) % len(pb.history)
		if pb.history[idx].valid && pb.history[idx].record.Tick == tick {
			pb.history[idx].valid = false
			pb.count--
		}
	}
	pb.oldest = t + 1
	pb.advanceOldest()
}

// Clear drops every record.
func (pb *PredictionBuffer) Clear() {
	clear(pb.history)
	pb.count = 0
	pb.oldest = 0
	pb.newest = 0
}

// advanceOldest moves oldest forward past slots that were overwritten by the
// ring wrapping.
func (pb *PredictionBuffer) advanceOldest() {
	if pb.count == 0 {
		return
	}
	for pb.oldest < pb.newest {
		if _, ok := pb.Get(pb.oldest); ok {
			return
		}
		pb.oldest++
	}
}
