package core

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingTicker struct {
	n atomic.Int32
}

func (c *countingTicker) Tick() { c.n.Add(1) }

func TestGameLoopTicksUntilStopped(t *testing.T) {
	t.Parallel()

	target := &countingTicker{}
	loop := NewGameLoop(target, 500, zap.NewNop().Sugar())
	go loop.Run()

	deadline := time.Now().Add(2 * time.Second)
	for target.n.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("loop did not tick")
		}
		time.Sleep(time.Millisecond)
	}

	loop.Stop()
	stopped := target.n.Load()
	time.Sleep(20 * time.Millisecond)
	if target.n.Load() != stopped {
		t.Fatal("loop kept ticking after Stop")
	}

	// Stop is idempotent.
	loop.Stop()
}

func TestGameLoopStopBeforeRun(t *testing.T) {
	t.Parallel()

	target := &countingTicker{}
	loop := NewGameLoop(target, 500, zap.NewNop().Sugar())

	stopped := make(chan struct{})
	go func() {
		loop.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a loop that never ran")
	}

	loop.Run()
	if target.n.Load() != 0 {
		t.Fatal("expected a stopped loop not to tick")
	}
}

func TestObserveTickCountsSlowTicks(t *testing.T) {
	t.Parallel()

	var m Metrics
	m.ObserveTick(5*time.Millisecond, 16*time.Millisecond)
	m.ObserveTick(20*time.Millisecond, 16*time.Millisecond)

	if m.Ticks.Load() != 2 || m.SlowTicks.Load() != 1 {
		t.Fatalf("expected 2 ticks with 1 slow, got %d/%d", m.Ticks.Load(), m.SlowTicks.Load())
	}
	if avg := m.Snapshot()["avg_tick_ms"].(float64); !closeTo(avg, 12.5) {
		t.Fatalf("expected 12.5ms average, got %v", avg)
	}
}
