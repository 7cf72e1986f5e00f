package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/elfwalk-mp/config"
	"github.com/automoto/elfwalk-mp/logging"
	"github.com/automoto/elfwalk-mp/server/core"
	"github.com/automoto/elfwalk-mp/shared/leveldata"
	"github.com/automoto/elfwalk-mp/shared/protocol"
	"github.com/google/uuid"
)

const jwtSecretEnv = "ELFWALK_JWT_SECRET"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "elfwalk-server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.DefaultServer()
	flag.UintVar(&cfg.Port, "port", cfg.Port, "Server port")
	flag.StringVar(&cfg.Name, "name", cfg.Name, "Server display name")
	flag.StringVar(&cfg.RequiredVersion, "version", cfg.RequiredVersion, "Required client version (empty = accept any)")
	flag.IntVar(&cfg.MaxPlayers, "maxplayers", cfg.MaxPlayers, "Maximum confirmed players")
	flag.IntVar(&cfg.TickRate, "tickrate", cfg.TickRate, "Simulation tick rate (ticks per second)")
	flag.DurationVar(&cfg.ReplicationInterval, "replication", cfg.ReplicationInterval, "Snapshot interval")
	flag.IntVar(&cfg.HistorySize, "history", cfg.HistorySize, "Per-player input retention in ticks")
	flag.DurationVar(&cfg.ClientTimeout, "timeout", cfg.ClientTimeout, "Disconnect players silent for this long")
	flag.Float64Var(&cfg.InputRate, "inputrate", cfg.InputRate, "Input messages per second per connection")
	flag.IntVar(&cfg.InputBurst, "inputburst", cfg.InputBurst, "Input message burst per connection")
	flag.StringVar(&cfg.JWTSecret, "jwtsecret", os.Getenv(jwtSecretEnv), "Reconnect token secret (env "+jwtSecretEnv+")")
	flag.DurationVar(&cfg.TokenTTL, "tokenttl", cfg.TokenTTL, "Reconnect token lifetime")
	flag.StringVar(&cfg.MapPath, "map", cfg.MapPath, "TMX map with PlayerSpawn objects (empty = built-in arena)")
	flag.StringVar(&cfg.AdminAddr, "admin", cfg.AdminAddr, "Admin HTTP address for /metrics and /healthz (empty = off)")
	flag.StringVar(&cfg.Log.Level, "loglevel", cfg.Log.Level, "Log level: debug, info, warn, error")
	flag.StringVar(&cfg.Log.File, "logfile", cfg.Log.File, "Rotating log file (empty = stderr only)")
	flag.Parse()

	generatedSecret := false
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString() + uuid.NewString()
		generatedSecret = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if generatedSecret {
		log.Warnf("%s not set; reconnect tokens will not survive a restart", jwtSecretEnv)
	}

	if err := protocol.RegisterComponents(); err != nil {
		return fmt.Errorf("register components: %w", err)
	}

	arena, err := loadArena(cfg.MapPath)
	if err != nil {
		return err
	}
	log.Infow("arena loaded", "name", arena.Name, "spawns", len(arena.SpawnPoints))

	server := core.NewServer(cfg, arena, log)

	var admin *http.Server
	if cfg.AdminAddr != "" {
		admin = &http.Server{Addr: cfg.AdminAddr, Handler: server.AdminHandler()}
		go func() {
			log.Infow("admin listening", "addr", cfg.AdminAddr)
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("admin server", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down server")
		server.Stop()
		if admin != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = admin.Shutdown(ctx)
			cancel()
		}
		_ = log.Sync()
		os.Exit(0)
	}()

	log.Infow("starting elfwalk server",
		"name", cfg.Name, "port", cfg.Port, "tickRate", cfg.TickRate,
		"replicationTicks", cfg.ReplicationTicks(), "version", cfg.RequiredVersion)
	if err := server.Start(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func loadArena(path string) (*leveldata.Arena, error) {
	if path == "" {
		return leveldata.LoadDefaultArena()
	}
	return leveldata.LoadArena(os.DirFS("."), path)
}
