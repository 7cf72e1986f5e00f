package config

import (
	"fmt"

	"github.com/automoto/elfwalk-mp/logging"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
)

// ClientConfig contains the client's connection and prediction tuning.
type ClientConfig struct {
	ServerAddress string // host:port
	PlayerName    string
	Version       string

	HistorySize int
	Tolerance   float64

	WindowWidth  int
	WindowHeight int

	Log logging.Config
}

// DefaultClient returns the client defaults.
func DefaultClient() ClientConfig {
	return ClientConfig{
		ServerAddress: "localhost:7373",
		PlayerName:    "elf",
		HistorySize:   netconfig.HistorySize,
		Tolerance:     netconfig.ReconcileTolerance,
		WindowWidth:   960,
		WindowHeight:  540,
		Log:           logging.DefaultConfig(),
	}
}

// Validate reports the first invalid field.
func (c ClientConfig) Validate() error {
	switch {
	case c.ServerAddress == "":
		return fmt.Errorf("server address is empty: %w", ErrInvalidConfig)
	case c.HistorySize < netconfig.InputWindow:
		return fmt.Errorf("history size %d below input window %d: %w",
			c.HistorySize, netconfig.InputWindow, ErrInvalidConfig)
	case c.Tolerance <= 0:
		return fmt.Errorf("tolerance %f: %w", c.Tolerance, ErrInvalidConfig)
	case c.WindowWidth <= 0 || c.WindowHeight <= 0:
		return fmt.Errorf("window %dx%d: %w", c.WindowWidth, c.WindowHeight, ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
