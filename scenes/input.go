package scenes

import (
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/hajimehoshi/ebiten/v2"
)

// KeyBindings maps each direction to the keys that hold it.
type KeyBindings struct {
	Up, Down, Left, Right []ebiten.Key
}

var DefaultBindings = KeyBindings{
	Up:    []ebiten.Key{ebiten.KeyUp, ebiten.KeyW},
	Down:  []ebiten.Key{ebiten.KeyDown, ebiten.KeyS},
	Left:  []ebiten.Key{ebiten.KeyLeft, ebiten.KeyA},
	Right: []ebiten.Key{ebiten.KeyRight, ebiten.KeyD},
}

// KeyboardInput polls the keyboard once per tick.
type KeyboardInput struct {
	Bindings KeyBindings
}

func (k *KeyboardInput) Direction() netconfig.Direction {
	return netconfig.Direction{
		Up:    anyKeyPressed(k.Bindings.Up),
		Down:  anyKeyPressed(k.Bindings.Down),
		Left:  anyKeyPressed(k.Bindings.Left),
		Right: anyKeyPressed(k.Bindings.Right),
	}
}

func anyKeyPressed(keys []ebiten.Key) bool {
	for _, key := range keys {
		if ebiten.IsKeyPressed(key) {
			return true
		}
	}
	return false
}
