// Package leveldata loads arena maps shared between client and server. It has
// no dependencies on ebitengine or donburi so the server stays headless.
package leveldata

// Arena is the playfield parsed from a TMX map, in world units.
type Arena struct {
	Name        string
	Width       float64
	Height      float64
	SpawnPoints []SpawnPoint
}

// SpawnPoint is a player spawn location.
type SpawnPoint struct {
	X, Y  float64
	Index int
}

// Spawn returns the spawn point for the n-th confirmed player, cycling
// through the map's spawn points. An arena without spawn points spawns at the
// origin.
func (a *Arena) Spawn(n int) SpawnPoint {
	if len(a.SpawnPoints) == 0 {
		return SpawnPoint{}
	}
	if n < 0 {
		n = -n
	}
	return a.SpawnPoints[n%len(a.SpawnPoints)]
}
