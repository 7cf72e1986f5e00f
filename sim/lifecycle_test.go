package sim

import (
	"testing"

	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/shared/netcomponents"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/automoto/elfwalk-mp/tags"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"
)

func newTestContext() *Context {
	return NewContext(zap.NewNop().Sugar())
}

func TestOnPlayerConfirmedSpawnsByKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind    components.ControlKind
		tag     donburi.IComponentType
		hasComp donburi.IComponentType
		netID   esync.NetworkId
	}{
		{components.ControlUnowned, tags.Player, components.ServerInput, 0},
		{components.ControlPredictedLocal, tags.LocalPlayer, components.Prediction, 4},
		{components.ControlInterpolatedRemote, tags.RemotePlayer, components.NetInterp, 5},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()

			ctx := newTestContext()
			ctx.Tick = 42
			entry := ctx.OnPlayerConfirmed(1, SpawnOptions{
				Kind:      tt.kind,
				Position:  math.Vec2{X: 2, Y: -3},
				NetworkID: tt.netID,
			})

			if !entry.HasComponent(tt.tag) || !entry.HasComponent(tt.hasComp) {
				t.Fatalf("expected %v entity with its components", tt.kind)
			}
			if got := netcomponents.PlayerId.Get(entry).ID; got != 1 {
				t.Fatalf("expected player 1, got %d", got)
			}
			if pos, _ := ctx.Position(1); pos != (math.Vec2{X: 2, Y: -3}) {
				t.Fatalf("expected spawn position, got %+v", pos)
			}
			if st := netcomponents.PlayerState.Get(entry); st.ServerTick != 42 {
				t.Fatalf("expected server tick 42, got %d", st.ServerTick)
			}
			if kind, _ := ctx.Kind(1); kind != tt.kind {
				t.Fatalf("expected kind %v, got %v", tt.kind, kind)
			}
			if tt.netID != 0 && esync.GetNetworkId(entry) == nil {
				t.Fatal("expected network id on client copy")
			}
		})
	}
}

func TestOnPlayerConfirmedTwiceReturnsExisting(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	var spawned int
	PlayerSpawnedEvent.Subscribe(ctx.World(), func(donburi.World, PlayerSpawned) { spawned++ })

	first := ctx.OnPlayerConfirmed(7, SpawnOptions{Kind: components.ControlUnowned})
	second := ctx.OnPlayerConfirmed(7, SpawnOptions{Kind: components.ControlPredictedLocal})
	ctx.FlushEvents()

	if first.Entity() != second.Entity() {
		t.Fatal("expected the existing entity")
	}
	if ctx.PlayerCount() != 1 || spawned != 1 {
		t.Fatalf("expected one player and one event, got %d and %d", ctx.PlayerCount(), spawned)
	}
}

func TestOnPlayerDisconnectedDestroysPrediction(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	entry := ctx.OnPlayerConfirmed(3, SpawnOptions{Kind: components.ControlPredictedLocal})
	p := components.Prediction.Get(entry).Predictor
	p.Capture(1, netconfig.Direction{Right: true})
	p.Step(1, math.Vec2{})

	var got []PlayerDespawned
	PlayerDespawnedEvent.Subscribe(ctx.World(), func(_ donburi.World, ev PlayerDespawned) {
		got = append(got, ev)
	})

	if !ctx.OnPlayerDisconnected(3, "left") {
		t.Fatal("expected known player removed")
	}
	ctx.FlushEvents()

	if ctx.HasPlayer(3) {
		t.Fatal("expected player gone")
	}
	if p.History.Len() != 0 {
		t.Fatal("expected prediction history dropped")
	}
	if _, ok := p.Inputs.Latest(); ok {
		t.Fatal("expected inputs dropped")
	}
	if len(got) != 1 || got[0].Reason != "left" || got[0].Kind != components.ControlPredictedLocal {
		t.Fatalf("unexpected despawn events %+v", got)
	}
	if ctx.OnPlayerDisconnected(3, "left") {
		t.Fatal("expected second disconnect to report unknown player")
	}
}

func TestOnPlayerDisconnectedClearsServerInput(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	entry := ctx.OnPlayerConfirmed(2, SpawnOptions{Kind: components.ControlUnowned, HistorySize: 16})
	buf := components.ServerInput.Get(entry).Buffer
	if buf.Capacity() != 16 {
		t.Fatalf("expected buffer of 16, got %d", buf.Capacity())
	}
	buf.Store(5, netconfig.Direction{Up: true})

	ctx.OnPlayerDisconnected(2, "timeout")
	if _, ok := buf.Latest(); ok {
		t.Fatal("expected buffered inputs cleared")
	}
}

func TestPlayerIDsSorted(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	for _, id := range []netconfig.PlayerID{9, 2, 5} {
		ctx.OnPlayerConfirmed(id, SpawnOptions{})
	}
	ids := ctx.PlayerIDs()
	if len(ids) != 3 || ids[0] != 2 || ids[1] != 5 || ids[2] != 9 {
		t.Fatalf("expected [2 5 9], got %v", ids)
	}
}
