package scenes

import (
	"github.com/automoto/elfwalk-mp/config"
	"github.com/automoto/elfwalk-mp/network"
	"go.uber.org/zap"
)

type SceneChanger interface {
	ChangeScene(scene interface{})
}

// Env carries what every scene needs from the application.
type Env struct {
	Config   config.ClientConfig
	Settings *config.SettingsStore // nil when persistence is unavailable
	Log      *zap.SugaredLogger
	Metrics  *network.Metrics
}

func (env Env) saveSettings(s config.SavedSettings) {
	if env.Settings == nil {
		return
	}
	if err := env.Settings.Save(s); err != nil {
		env.Log.Warnw("could not save settings", "error", err)
	}
}

func (env Env) loadSettings() config.SavedSettings {
	if env.Settings == nil {
		return config.SavedSettings{}
	}
	saved, err := env.Settings.Load()
	if err != nil {
		env.Log.Warnw("could not load settings", "error", err)
		return config.SavedSettings{}
	}
	if saved == nil {
		return config.SavedSettings{}
	}
	return *saved
}
