package config

import (
	"encoding/json"
	"fmt"

	"github.com/quasilyte/gdata"
)

const settingsKey = "settings"

// SavedSettings is the client state remembered between runs.
type SavedSettings struct {
	ServerAddress  string `json:"serverAddress"`
	PlayerName     string `json:"playerName"`
	ReconnectToken string `json:"reconnectToken"`
}

// ItemStore is the subset of gdata.Manager used for settings.
type ItemStore interface {
	LoadItem(itemKey string) ([]byte, error)
	SaveItem(itemKey string, data []byte) error
}

// SettingsStore reads and writes SavedSettings.
type SettingsStore struct {
	items ItemStore
}

// OpenSettings opens the gdata store for appName.
func OpenSettings(appName string) (*SettingsStore, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	return NewSettingsStore(m), nil
}

func NewSettingsStore(items ItemStore) *SettingsStore {
	return &SettingsStore{items: items}
}

// Load returns the saved settings. A missing item yields nil and no error.
func (s *SettingsStore) Load() (*SavedSettings, error) {
	data, err := s.items.LoadItem(settingsKey)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var settings SavedSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &settings, nil
}

// Save writes settings.
func (s *SettingsStore) Save(settings SavedSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}
	if err := s.items.SaveItem(settingsKey, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Apply overlays saved values onto cfg for fields the user did not set.
func (s *SavedSettings) Apply(cfg *ClientConfig, explicit map[string]bool) {
	if s == nil {
		return
	}
	if s.ServerAddress != "" && !explicit["server"] {
		cfg.ServerAddress = s.ServerAddress
	}
	if s.PlayerName != "" && !explicit["name"] {
		cfg.PlayerName = s.PlayerName
	}
}
