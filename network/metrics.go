package network

import "sync/atomic"

// Metrics records client-side netcode counters for monitoring and debugging.
type Metrics struct {
	SnapshotsReceived atomic.Int64
	SnapshotsRejected atomic.Int64
	Confirmations     atomic.Int64
	Corrections       atomic.Int64
	ReplayedTicks     atomic.Int64
	Desyncs           atomic.Int64
	Resyncs           atomic.Int64
	StaleSnapshots    atomic.Int64
	InterpDiscarded   atomic.Int64
	InputsSent        atomic.Int64
	SendFailures      atomic.Int64
	InboxOverflow     atomic.Int64
}

// RecordReconcile counts a reconciliation result.
func (m *Metrics) RecordReconcile(res Result) {
	switch res.Outcome {
	case OutcomeConfirmed, OutcomeAnchored:
		m.Confirmations.Add(1)
	case OutcomeCorrected:
		m.Corrections.Add(1)
		m.ReplayedTicks.Add(int64(res.Replayed))
	case OutcomeDesync:
		m.Desyncs.Add(1)
	case OutcomeResync:
		m.Resyncs.Add(1)
	case OutcomeStale:
		m.StaleSnapshots.Add(1)
	}
}

// Snapshot returns a read-only copy.
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"snapshots_received": m.SnapshotsReceived.Load(),
		"snapshots_rejected": m.SnapshotsRejected.Load(),
		"confirmations":      m.Confirmations.Load(),
		"corrections":        m.Corrections.Load(),
		"replayed_ticks":     m.ReplayedTicks.Load(),
		"desyncs":            m.Desyncs.Load(),
		"resyncs":            m.Resyncs.Load(),
		"stale_snapshots":    m.StaleSnapshots.Load(),
		"interp_discarded":   m.InterpDiscarded.Load(),
		"inputs_sent":        m.InputsSent.Load(),
		"send_failures":      m.SendFailures.Load(),
		"inbox_overflow":     m.InboxOverflow.Load(),
	}
}
