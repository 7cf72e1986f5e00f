package scenes

import (
	"image/color"
	"sync"

	"github.com/automoto/elfwalk-mp/network"
	"github.com/automoto/elfwalk-mp/shared/messages"
	"github.com/automoto/elfwalk-mp/ui"
	"github.com/hajimehoshi/ebiten/v2"
)

// ConnectScene collects the server address and player name, then performs the
// join handshake.
type ConnectScene struct {
	sceneChanger SceneChanger
	env          Env
	connectUI    *ui.ConnectUI
	netClient    *network.Client
	status       string
	once         sync.Once
}

func NewConnectScene(sc SceneChanger, env Env, status string) *ConnectScene {
	return &ConnectScene{sceneChanger: sc, env: env, status: status}
}

func (s *ConnectScene) Update() {
	s.once.Do(s.configure)
	if s.connectUI == nil {
		return
	}
	s.connectUI.Update()

	if s.netClient == nil {
		return
	}
	switch s.netClient.State() {
	case network.StateJoinedGame:
		saved := s.env.loadSettings()
		saved.ServerAddress = s.connectUI.Address()
		saved.PlayerName = s.connectUI.Name()
		saved.ReconnectToken = s.netClient.ReconnectToken()
		s.env.saveSettings(saved)

		s.sceneChanger.ChangeScene(NewNetworkedScene(s.sceneChanger, s.env, s.netClient))
	case network.StateError:
		err := s.netClient.LastError()
		s.netClient.Disconnect()
		s.netClient = nil

		// A rejected token would be rejected again; join fresh next time.
		saved := s.env.loadSettings()
		if saved.ReconnectToken != "" {
			saved.ReconnectToken = ""
			s.env.saveSettings(saved)
		}

		s.connectUI.SetConnecting(false)
		if err != nil {
			s.connectUI.SetStatus(err.Error())
		}
	}
}

func (s *ConnectScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if s.connectUI != nil {
		s.connectUI.UI.Draw(screen)
	}
}

func (s *ConnectScene) configure() {
	connectUI, err := ui.NewConnectUI(s.env.Config.ServerAddress, s.env.Config.PlayerName, s.connect)
	if err != nil {
		s.env.Log.Errorw("connect screen", "error", err)
		return
	}
	s.connectUI = connectUI
	s.connectUI.SetStatus(s.status)
}

func (s *ConnectScene) connect(address, name string) {
	if s.netClient != nil {
		return
	}
	s.connectUI.SetConnecting(true)
	s.connectUI.SetStatus("Connecting to " + address + "...")

	s.netClient = network.NewClient(s.env.Log, s.env.Metrics)
	s.netClient.Connect(address, messages.JoinRequest{
		Version:        s.env.Config.Version,
		PlayerName:     name,
		ReconnectToken: s.env.loadSettings().ReconnectToken,
	})
}
