package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/automoto/elfwalk-mp/config"
	"github.com/automoto/elfwalk-mp/logging"
	"github.com/automoto/elfwalk-mp/network"
	"github.com/automoto/elfwalk-mp/scenes"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/automoto/elfwalk-mp/shared/protocol"
	"github.com/hajimehoshi/ebiten/v2"
)

type Scene interface {
	Update()
	Draw(screen *ebiten.Image)
}

type Game struct {
	width, height int
	scene         Scene
}

// ChangeScene switches to a new scene
func (g *Game) ChangeScene(scene interface{}) {
	g.scene = scene.(Scene)
}

func (g *Game) Update() error {
	g.scene.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "elfwalk:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.DefaultClient()
	flag.StringVar(&cfg.ServerAddress, "server", cfg.ServerAddress, "Server address host:port")
	flag.StringVar(&cfg.PlayerName, "name", cfg.PlayerName, "Player name")
	flag.StringVar(&cfg.Version, "version", cfg.Version, "Client version sent on join")
	flag.IntVar(&cfg.HistorySize, "history", cfg.HistorySize, "Prediction history in ticks")
	flag.Float64Var(&cfg.Tolerance, "tolerance", cfg.Tolerance, "Reconciliation tolerance in world units")
	flag.IntVar(&cfg.WindowWidth, "width", cfg.WindowWidth, "Window width")
	flag.IntVar(&cfg.WindowHeight, "height", cfg.WindowHeight, "Window height")
	flag.StringVar(&cfg.Log.Level, "loglevel", cfg.Log.Level, "Log level: debug, info, warn, error")
	flag.StringVar(&cfg.Log.File, "logfile", cfg.Log.File, "Rotating log file (empty = stderr only)")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Register network components for client-side deserialization
	if err := protocol.RegisterComponents(); err != nil {
		return fmt.Errorf("register network components: %w", err)
	}

	settings, err := config.OpenSettings("elfwalk")
	if err != nil {
		log.Warnw("settings unavailable", "error", err)
		settings = nil
	}
	if settings != nil {
		if saved, err := settings.Load(); err != nil {
			log.Warnw("could not load settings", "error", err)
		} else {
			saved.Apply(&cfg, explicit)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	env := scenes.Env{
		Config:   cfg,
		Settings: settings,
		Log:      log,
		Metrics:  &network.Metrics{},
	}

	g := &Game{width: cfg.WindowWidth, height: cfg.WindowHeight}
	g.scene = scenes.NewConnectScene(g, env, "")

	ebiten.SetTPS(netconfig.TickRate)
	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("Elfwalk")

	return ebiten.RunGame(g)
}
