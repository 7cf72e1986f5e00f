package core

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Ticker is the part of the server the loop drives.
type Ticker interface {
	Tick()
}

type GameLoop struct {
	target   Ticker
	tickRate int
	log      *zap.SugaredLogger
	stopChan chan struct{}
	done     chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

func NewGameLoop(target Ticker, tickRate int, log *zap.SugaredLogger) *GameLoop {
	return &GameLoop{
		target:   target,
		tickRate: tickRate,
		log:      log,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run ticks the target at the fixed rate until Stop is called.
func (g *GameLoop) Run() {
	g.mu.Lock()
	if g.started || g.stopped {
		g.mu.Unlock()
		return
	}
	g.started = true
	g.mu.Unlock()

	defer close(g.done)
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	g.log.Infow("game loop started", "tickRate", g.tickRate)

	for {
		select {
		case <-g.stopChan:
			g.log.Info("game loop stopped")
			return
		case <-ticker.C:
			g.target.Tick()
		}
	}
}

// Stop ends Run and waits for the current tick to finish. Stopping a loop
// that never ran returns at once, and a later Run does nothing.
func (g *GameLoop) Stop() {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	g.stopped = true
	close(g.stopChan)
	started := g.started
	g.mu.Unlock()

	if started {
		<-g.done
	}
}
