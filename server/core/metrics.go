package core

import (
	"sync/atomic"
	"time"
)

// Metrics records server counters. Safe for concurrent use; the admin
// endpoint reads it while the loop writes.
type Metrics struct {
	Ticks          atomic.Int64
	TickNanos      atomic.Int64
	SlowTicks      atomic.Int64
	Syncs          atomic.Int64
	SyncErrors     atomic.Int64
	InputsAccepted atomic.Int64
	InputsLate     atomic.Int64
	RateLimited    atomic.Int64
	Spoofed        atomic.Int64
	Unconfirmed    atomic.Int64
	StarvedTicks   atomic.Int64
	CatchUpTicks   atomic.Int64
	Confirmed      atomic.Int64
	RejectedJoins  atomic.Int64
	Disconnects    atomic.Int64
	Timeouts       atomic.Int64
	AppMessages    atomic.Int64
	SendFailures   atomic.Int64
	InboxOverflow  atomic.Int64
	Players        atomic.Int64
}

// ObserveTick records how long a tick took; budget is the tick period.
func (m *Metrics) ObserveTick(d, budget time.Duration) {
	m.Ticks.Add(1)
	m.TickNanos.Add(d.Nanoseconds())
	if d > budget {
		m.SlowTicks.Add(1)
	}
}

// Snapshot returns a read-only copy.
func (m *Metrics) Snapshot() map[string]any {
	ticks := m.Ticks.Load()
	avgMs := 0.0
	if ticks > 0 {
		avgMs = float64(m.TickNanos.Load()) / float64(ticks) / 1e6
	}
	return map[string]any{
		"ticks":           ticks,
		"avg_tick_ms":     avgMs,
		"slow_ticks":      m.SlowTicks.Load(),
		"syncs":           m.Syncs.Load(),
		"sync_errors":     m.SyncErrors.Load(),
		"inputs_accepted": m.InputsAccepted.Load(),
		"inputs_late":     m.InputsLate.Load(),
		"rate_limited":    m.RateLimited.Load(),
		"spoofed_inputs":  m.Spoofed.Load(),
		"unconfirmed":     m.Unconfirmed.Load(),
		"starved_ticks":   m.StarvedTicks.Load(),
		"catch_up_ticks":  m.CatchUpTicks.Load(),
		"players":         m.Players.Load(),
		"confirmed_joins": m.Confirmed.Load(),
		"rejected_joins":  m.RejectedJoins.Load(),
		"disconnects":     m.Disconnects.Load(),
		"timeouts":        m.Timeouts.Load(),
		"app_messages":    m.AppMessages.Load(),
		"send_failures":   m.SendFailures.Load(),
		"inbox_overflow":  m.InboxOverflow.Load(),
	}
}
