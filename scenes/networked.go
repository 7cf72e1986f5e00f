package scenes

import (
	"fmt"
	"image/color"
	"strconv"
	"sync"

	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/network"
	"github.com/automoto/elfwalk-mp/shared/leveldata"
	"github.com/automoto/elfwalk-mp/shared/messages"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/automoto/elfwalk-mp/sim"
	"github.com/automoto/elfwalk-mp/systems"
	"github.com/automoto/elfwalk-mp/ui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi"
)

const (
	playerSize  = 16
	maxMessages = 5
)

var (
	colorArena  = color.RGBA{24, 40, 28, 255}
	colorBorder = color.RGBA{70, 110, 80, 255}
	colorLocal  = color.RGBA{120, 230, 120, 255}
	colorText   = color.RGBA{230, 230, 230, 255}
	colorHUD    = color.RGBA{150, 220, 150, 255}

	remoteColors = []color.RGBA{
		{230, 120, 120, 255},
		{120, 160, 240, 255},
		{240, 200, 100, 255},
		{200, 130, 230, 255},
	}
)

// NetworkedScene runs one client simulation tick per ebiten update and draws
// every player at its current position.
type NetworkedScene struct {
	sceneChanger SceneChanger
	env          Env
	netClient    *network.Client

	sim   *sim.Context
	state *systems.NetState
	input *KeyboardInput
	arena *leveldata.Arena

	messages []messages.AppMessage
	wave     uint64

	hudFace   text.Face
	labelFace text.Face
	once      sync.Once
}

func NewNetworkedScene(sc SceneChanger, env Env, client *network.Client) *NetworkedScene {
	return &NetworkedScene{
		sceneChanger: sc,
		env:          env,
		netClient:    client,
		input:        &KeyboardInput{Bindings: DefaultBindings},
	}
}

func (ns *NetworkedScene) configure() {
	log := ns.env.Log.Named("scene")

	ns.sim = sim.NewContext(log)
	ns.sim.Tick = ns.netClient.ServerTick()
	ns.sim.Local = ns.netClient.Identity().PlayerID

	ns.state = systems.NewNetState(ns.netClient.Identity, ns.env.Metrics)
	ns.state.ReplicationTicks = ns.netClient.ReplicationTicks
	ns.state.HistorySize = ns.env.Config.HistorySize
	ns.state.Tolerance = ns.env.Config.Tolerance

	systems.AddClientSystems(ns.sim, ns.state, systems.ClientIO{
		Snapshots: ns.netClient,
		Input:     ns.input,
		Sender:    ns.netClient,
	})

	sim.PlayerSpawnedEvent.Subscribe(ns.sim.World(), func(_ donburi.World, e sim.PlayerSpawned) {
		log.Infow("player spawned", "player", e.ID, "kind", e.Kind, "tick", e.Tick)
	})
	sim.PlayerDespawnedEvent.Subscribe(ns.sim.World(), func(_ donburi.World, e sim.PlayerDespawned) {
		log.Infow("player despawned", "player", e.ID, "kind", e.Kind, "reason", e.Reason)
	})

	arena, err := leveldata.LoadDefaultArena()
	if err != nil {
		log.Warnw("arena", "error", err)
		arena = &leveldata.Arena{Width: 640, Height: 384}
	}
	ns.arena = arena

	_, normal, small, err := ui.LoadFaces()
	if err != nil {
		log.Errorw("fonts", "error", err)
	}
	ns.hudFace = normal
	ns.labelFace = small
}

func (ns *NetworkedScene) Update() {
	ns.once.Do(ns.configure)

	state := ns.netClient.State()
	if state == network.StateDisconnected || state == network.StateError {
		status := "Disconnected"
		if err := ns.netClient.LastError(); err != nil {
			status = err.Error()
		}
		ns.env.Log.Infow("disconnected, returning to connect screen", "state", state)
		ns.netClient.Disconnect()
		ns.sceneChanger.ChangeScene(NewConnectScene(ns.sceneChanger, ns.env, status))
		return
	}

	ns.sim.Advance()
	ns.sim.ECS.Update()

	for _, msg := range ns.netClient.DrainAppMessages() {
		ns.messages = append(ns.messages, msg)
		if len(ns.messages) > maxMessages {
			ns.messages = ns.messages[1:]
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		ns.wave++
		err := ns.netClient.SendMessage(messages.AppMessage{Seq: ns.wave, Body: "waves"})
		if err != nil {
			ns.env.Log.Warnw("app message send failed", "error", err)
		}
	}
}

// Position exposes the current position of a player for rendering.
func (ns *NetworkedScene) Position(id netconfig.PlayerID) (float64, float64, bool) {
	if ns.sim == nil {
		return 0, 0, false
	}
	pos, ok := ns.sim.Position(id)
	return pos.X, pos.Y, ok
}

func (ns *NetworkedScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if ns.sim == nil {
		return
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	cx, cy := float32(sw)/2, float32(sh)/2

	aw, ah := float32(ns.arena.Width), float32(ns.arena.Height)
	vector.DrawFilledRect(screen, cx-aw/2, cy-ah/2, aw, ah, colorArena, false)
	vector.StrokeRect(screen, cx-aw/2, cy-ah/2, aw, ah, 2, colorBorder, false)

	for i, id := range ns.sim.PlayerIDs() {
		x, y, ok := ns.Position(id)
		if !ok {
			continue
		}
		kind, _ := ns.sim.Kind(id)
		c := remoteColors[i%len(remoteColors)]
		if kind == components.ControlPredictedLocal {
			c = colorLocal
		}

		// World Y grows upwards.
		px := cx + float32(x) - playerSize/2
		py := cy - float32(y) - playerSize/2
		vector.DrawFilledRect(screen, px, py, playerSize, playerSize, c, false)
		ns.drawText(screen, ns.labelFace, "ID:"+strconv.FormatUint(uint64(id), 10), px, py-12, colorText)
	}

	m := ns.env.Metrics
	hud := fmt.Sprintf("tick %d  players %d  corrections %d  desyncs %d  rejected %d",
		ns.sim.Tick, ns.sim.PlayerCount(),
		m.Corrections.Load(), m.Desyncs.Load(), m.SnapshotsRejected.Load())
	ns.drawText(screen, ns.hudFace, hud, 6, 6, colorHUD)

	for i, msg := range ns.messages {
		line := fmt.Sprintf("#%d player %d: %s", msg.Seq, msg.From, msg.Body)
		ns.drawText(screen, ns.labelFace, line, 6, float32(sh-14*(len(ns.messages)-i)-4), colorText)
	}
}

func (ns *NetworkedScene) drawText(screen *ebiten.Image, face text.Face, s string, x, y float32, c color.Color) {
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}
