package leveldata

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/lafriks/go-tiled"
)

// DefaultArenaPath is the built-in map inside Builtin.
const DefaultArenaPath = "maps/arena.tmx"

//go:embed maps/*.tmx
var Builtin embed.FS

// LoadArena parses a TMX file and returns the arena bounds and the spawn
// points of its PlayerSpawn object group. It takes an fs.FS so callers can
// pass the embedded maps or os.DirFS.
//
// Map coordinates grow downwards; spawn points are converted to world
// coordinates where up is positive Y and the map centre is the origin.
func LoadArena(fsys fs.FS, tmxPath string) (*Arena, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	arena := &Arena{
		Name:   strings.TrimSuffix(path.Base(tmxPath), path.Ext(tmxPath)),
		Width:  float64(levelMap.Width * levelMap.TileWidth),
		Height: float64(levelMap.Height * levelMap.TileHeight),
	}

	for _, og := range levelMap.ObjectGroups {
		if og.Name != "PlayerSpawn" {
			continue
		}
		for _, o := range og.Objects {
			arena.SpawnPoints = append(arena.SpawnPoints, SpawnPoint{
				X:     o.X - arena.Width/2,
				Y:     arena.Height/2 - o.Y,
				Index: o.Properties.GetInt("spawnIndex"),
			})
		}
	}

	sort.Slice(arena.SpawnPoints, func(i, j int) bool {
		return arena.SpawnPoints[i].Index < arena.SpawnPoints[j].Index
	})

	return arena, nil
}

// LoadDefaultArena loads the embedded arena.
func LoadDefaultArena() (*Arena, error) {
	return LoadArena(Builtin, DefaultArenaPath)
}
