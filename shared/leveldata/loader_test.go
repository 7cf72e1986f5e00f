package leveldata

import (
	"testing"
	"testing/fstest"
)

func TestLoadDefaultArena(t *testing.T) {
	arena, err := LoadDefaultArena()
	if err != nil {
		t.Fatalf("LoadDefaultArena: %v", err)
	}
	if arena.Width != 640 || arena.Height != 384 {
		t.Fatalf("unexpected bounds %vx%v", arena.Width, arena.Height)
	}
	if arena.Name != "arena" {
		t.Fatalf("unexpected name %q", arena.Name)
	}
	if len(arena.SpawnPoints) != 4 {
		t.Fatalf("expected 4 spawn points, got %d", len(arena.SpawnPoints))
	}
	first := arena.SpawnPoints[0]
	if first.Index != 0 || first.X != -160 || first.Y != 64 {
		t.Fatalf("unexpected first spawn %+v", first)
	}
}

func TestSpawnCycles(t *testing.T) {
	arena := &Arena{SpawnPoints: []SpawnPoint{{X: 1}, {X: 2}}}
	if got := arena.Spawn(3).X; got != 2 {
		t.Fatalf("Spawn(3) = %v, want 2", got)
	}
	if got := (&Arena{}).Spawn(5); got != (SpawnPoint{}) {
		t.Fatalf("empty arena should spawn at origin, got %+v", got)
	}
}

func TestLoadArenaMissingFile(t *testing.T) {
	if _, err := LoadArena(fstest.MapFS{}, "maps/none.tmx"); err == nil {
		t.Fatal("expected error for missing map")
	}
}
