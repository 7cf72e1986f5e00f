package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/automoto/elfwalk-mp/logging"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// ServerConfig contains the dedicated server's tuning and surface.
type ServerConfig struct {
	Port            uint
	Name            string
	RequiredVersion string // empty accepts any client version
	MaxPlayers      int

	TickRate            int
	ReplicationInterval time.Duration
	HistorySize         int // per-player input retention in ticks
	ClientTimeout       time.Duration

	// Inbound input batches per second per connection, and burst.
	InputRate  float64
	InputBurst int

	JWTSecret   string
	TokenTTL    time.Duration
	TokenIssuer string

	// Optional TMX map providing spawn points; empty uses the built-in arena.
	MapPath string

	// Optional admin HTTP address serving /metrics and /healthz.
	AdminAddr string

	Log logging.Config
}

// DefaultServer returns the server defaults.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:                7373,
		Name:                "Elfwalk Server",
		MaxPlayers:          16,
		TickRate:            netconfig.TickRate,
		ReplicationInterval: netconfig.ReplicationInterval,
		HistorySize:         netconfig.HistorySize,
		ClientTimeout:       netconfig.ClientTimeout,
		InputRate:           120,
		InputBurst:          30,
		TokenTTL:            10 * time.Minute,
		TokenIssuer:         "elfwalk-server",
		Log:                 logging.DefaultConfig(),
	}
}

// ReplicationTicks is the replication interval expressed in ticks.
func (c ServerConfig) ReplicationTicks() int {
	return netconfig.TicksFor(c.ReplicationInterval, c.TickRate)
}

// Validate reports the first invalid field.
func (c ServerConfig) Validate() error {
	switch {
	case c.Port == 0 || c.Port > 65535:
		return fmt.Errorf("port %d: %w", c.Port, ErrInvalidConfig)
	case c.TickRate <= 0:
		return fmt.Errorf("tick rate %d: %w", c.TickRate, ErrInvalidConfig)
	case c.ReplicationInterval <= 0:
		return fmt.Errorf("replication interval %s: %w", c.ReplicationInterval, ErrInvalidConfig)
	case c.HistorySize < netconfig.InputWindow:
		return fmt.Errorf("history size %d below input window %d: %w",
			c.HistorySize, netconfig.InputWindow, ErrInvalidConfig)
	case c.ClientTimeout <= 0:
		return fmt.Errorf("client timeout %s: %w", c.ClientTimeout, ErrInvalidConfig)
	case c.MaxPlayers <= 0:
		return fmt.Errorf("max players %d: %w", c.MaxPlayers, ErrInvalidConfig)
	case c.InputRate <= 0 || c.InputBurst <= 0:
		return fmt.Errorf("input rate %.1f/%d: %w", c.InputRate, c.InputBurst, ErrInvalidConfig)
	case len(c.JWTSecret) < 16:
		return fmt.Errorf("jwt secret must be at least 16 bytes: %w", ErrInvalidConfig)
	case c.TokenTTL <= 0:
		return fmt.Errorf("token ttl %s: %w", c.TokenTTL, ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
