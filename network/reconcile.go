package network

import (
	"github.com/automoto/elfwalk-mp/shared/gamemath"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/yohamta/donburi/features/math"
)

// PredictionState is the lifecycle of a locally predicted entity.
type PredictionState int

const (
	PredictionUnconfirmed PredictionState = iota // spawned, no authoritative anchor yet
	PredictionTracking                           // optimistic advance, anchored
	PredictionCorrecting                         // replaying after a divergence
	PredictionDestroyed                          // despawned; all buffers dropped
)

func (s PredictionState) String() string {
	switch s {
	case PredictionUnconfirmed:
		return "unconfirmed"
	case PredictionTracking:
		return "tracking"
	case PredictionCorrecting:
		return "correcting"
	case PredictionDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Outcome classifies what a reconciliation did.
type Outcome int

const (
	OutcomeIgnored   Outcome = iota // predictor destroyed
	OutcomeStale                    // tick at or behind the last confirmed tick
	OutcomeConfirmed                // prediction matched within tolerance
	OutcomeCorrected                // diverged; anchored to authority and replayed
	OutcomeAnchored                 // first anchor for an unconfirmed entity
	OutcomeDesync                   // tick older than retained history; re-anchored and replayed
	OutcomeResync                   // tick ahead of the local tick; hard snap
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeStale:
		return "stale"
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeCorrected:
		return "corrected"
	case OutcomeAnchored:
		return "anchored"
	case OutcomeDesync:
		return "desync"
	case OutcomeResync:
		return "resync"
	}
	return "unknown"
}

// Result describes a single reconciliation.
type Result struct {
	Outcome  Outcome
	Tick     netconfig.Tick
	Error    float64 // distance between predicted and authoritative at Tick
	Replayed int     // ticks re-simulated after the anchor
	Position math.Vec2
}

// Predictor owns the client-side prediction state of the local player: the
// captured inputs, the per-tick history and the prediction lifecycle.
type Predictor struct {
	History   *PredictionBuffer
	Inputs    *InputBuffer
	Tolerance float64

	state        PredictionState
	confirmed    netconfig.Tick
	hasConfirmed bool
}

// NewPredictor creates a predictor whose history and input buffers retain
// historySize ticks.
func NewPredictor(historySize int, tolerance float64) *Predictor {
	if tolerance < 0 {
		tolerance = 0
	}
	return &Predictor{
		History:   NewPredictionBuffer(historySize),
		Inputs:    NewInputBuffer(historySize),
		Tolerance: tolerance,
		state:     PredictionUnconfirmed,
	}
}

// State returns the current lifecycle state.
func (p *Predictor) State() PredictionState {
	return p.state
}

// LastConfirmed returns the newest tick the server has confirmed or corrected.
func (p *Predictor) LastConfirmed() (netconfig.Tick, bool) {
	return p.confirmed, p.hasConfirmed
}

// Capture stores the local input sample for tick.
func (p *Predictor) Capture(tick netconfig.Tick, dir netconfig.Direction) {
	if p.state == PredictionDestroyed {
		return
	}
	p.Inputs.Store(tick, dir)
}

// Step advances pos by the buffered input for tick and records the result in
// history. A tick without a captured sample uses the "no direction" default.
func (p *Predictor) Step(tick netconfig.Tick, pos math.Vec2) math.Vec2 {
	if p.state == PredictionDestroyed {
		return pos
	}
	in := p.Inputs.Sample(tick)
	next := gamemath.ApplyMovement(pos, in)
	p.History.Store(InputRecord{Tick: tick, Input: in, Before: pos, After: next})
	return next
}

// Reconcile compares an authoritative position for snapTick against the
// prediction recorded for that tick. pos is the current predicted position at
// current; the returned position replaces it.
func (p *Predictor) Reconcile(current, snapTick netconfig.Tick, auth, pos math.Vec2) (math.Vec2, Result) {
	res := Result{Tick: snapTick, Position: pos}
	if p.state == PredictionDestroyed {
		res.Outcome = OutcomeIgnored
		return pos, res
	}
	if p.hasConfirmed && snapTick <= p.confirmed {
		res.Outcome = OutcomeStale
		return pos, res
	}

	if snapTick > current {
		p.hardSnap(snapTick)
		res.Outcome = OutcomeResync
		res.Error = gamemath.Distance(pos, auth)
		res.Position = auth
		return auth, res
	}

	rec, ok := p.History.Get(snapTick)
	if !ok {
		res.Error = gamemath.Distance(pos, auth)
		res.Outcome = OutcomeDesync
		if p.state == PredictionUnconfirmed {
			if oldest, held := p.History.Oldest(); !held || snapTick >= oldest {
				res.Outcome = OutcomeAnchored
			}
		}
		p.History.Clear()
		next, replayed := p.replay(snapTick, current, auth)
		p.confirm(snapTick)
		res.Replayed = replayed
		res.Position = next
		return next, res
	}

	res.Error = gamemath.Distance(rec.After, auth)
	if res.Error <= p.Tolerance {
		p.History.DiscardThrough(snapTick)
		p.confirm(snapTick)
		res.Outcome = OutcomeConfirmed
		return pos, res
	}

	p.state = PredictionCorrecting
	rec.After = auth
	p.History.Store(rec)

	anchor, replayed := p.replay(snapTick, current, auth)
	res.Replayed = replayed
	p.History.DiscardThrough(snapTick)
	p.confirm(snapTick)

	res.Outcome = OutcomeCorrected
	res.Position = anchor
	return anchor, res
}

// Destroy drops history and inputs in one step. Later calls are no-ops.
func (p *Predictor) Destroy() {
	p.History.Clear()
	p.Inputs.Clear()
	p.state = PredictionDestroyed
}

// hardSnap accepts the authoritative position without replay.
func (p *Predictor) hardSnap(tick netconfig.Tick) {
	p.History.Clear()
	p.confirm(tick)
}

// replay re-simulates every tick after from up to current starting at anchor,
// rebuilding history. Ticks whose sample was evicted use the default, which
// does not move, so only the retained input window is walked.
func (p *Predictor) replay(from, current netconfig.Tick, anchor math.Vec2) (math.Vec2, int) {
	start := from + 1
	if window := netconfig.Tick(p.Inputs.Capacity()); current >= window && start < current+1-window {
		start = current + 1 - window
	}
	for t := start; t <= current; t++ {
		in := p.Inputs.Sample(t)
		next := gamemath.ApplyMovement(anchor, in)
		p.History.Store(InputRecord{Tick: t, Input: in, Before: anchor, After: next})
		anchor = next
	}
	if current < from {
		return anchor, 0
	}
	return anchor, int(current - from)
}

func (p *Predictor) confirm(tick netconfig.Tick) {
	p.confirmed = tick
	p.hasConfirmed = true
	p.state = PredictionTracking
}
