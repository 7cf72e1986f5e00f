// Package sim holds the simulation context shared by every fixed-tick phase:
// the ECS world, the player table and the tick counter. Phases receive the
// context explicitly; nothing in the simulation lives in package globals.
package sim

import (
	"slices"

	"github.com/automoto/elfwalk-mp/shared/netcomponents"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"
)

// Context is the simulation state of one peer.
type Context struct {
	ECS  *ecs.ECS
	Tick netconfig.Tick

	// Local is the identity this peer predicts; zero on a dedicated server.
	Local netconfig.PlayerID

	Log *zap.SugaredLogger

	players map[netconfig.PlayerID]donburi.Entity
}

// NewContext creates a context around a fresh world.
func NewContext(log *zap.SugaredLogger) *Context {
	return &Context{
		ECS:     ecs.NewECS(donburi.NewWorld()),
		Log:     log,
		players: make(map[netconfig.PlayerID]donburi.Entity),
	}
}

// World returns the ECS world.
func (c *Context) World() donburi.World {
	return c.ECS.World
}

// Advance moves to the next tick and returns it.
func (c *Context) Advance() netconfig.Tick {
	c.Tick++
	return c.Tick
}

// Player returns the entry for id if the player exists.
func (c *Context) Player(id netconfig.PlayerID) (*donburi.Entry, bool) {
	entity, ok := c.players[id]
	if !ok || !c.ECS.World.Valid(entity) {
		return nil, false
	}
	return c.ECS.World.Entry(entity), true
}

// HasPlayer reports whether id is in the player table.
func (c *Context) HasPlayer(id netconfig.PlayerID) bool {
	_, ok := c.Player(id)
	return ok
}

// PlayerIDs returns every player identity in ascending order.
func (c *Context) PlayerIDs() []netconfig.PlayerID {
	ids := make([]netconfig.PlayerID, 0, len(c.players))
	for id := range c.players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// PlayerCount returns the number of players in the table.
func (c *Context) PlayerCount() int {
	return len(c.players)
}

// Position returns the current position of a player: authoritative on the
// server, predicted for the local player and interpolated for remote players.
func (c *Context) Position(id netconfig.PlayerID) (math.Vec2, bool) {
	entry, ok := c.Player(id)
	if !ok {
		return math.Vec2{}, false
	}
	return netcomponents.PlayerPosition.Get(entry).Vec(), true
}
