package core

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/automoto/elfwalk-mp/components"
	"github.com/automoto/elfwalk-mp/config"
	"github.com/automoto/elfwalk-mp/network"
	"github.com/automoto/elfwalk-mp/shared/leveldata"
	"github.com/automoto/elfwalk-mp/shared/messages"
	"github.com/automoto/elfwalk-mp/shared/netcomponents"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/automoto/elfwalk-mp/sim"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const inboxSize = 4096

var (
	ErrVersionMismatch = errors.New("client version mismatch")
	ErrServerFull      = errors.New("server full")
	ErrTimedOut        = errors.New("timed out waiting for input")
)

// Server owns the authoritative simulation and the client connections.
// Router callbacks run on transport goroutines and only stage commands; the
// simulation is touched by the loop goroutine alone.
type Server struct {
	cfg     config.ServerConfig
	log     *zap.SugaredLogger
	metrics *Metrics
	tokens  *TokenIssuer
	arena   *leveldata.Arena

	sim       *sim.Context
	loop      *GameLoop
	transport *transports.WsServerTransport
	inbox     *network.Queue[command]
	syncFn    func() error
	trackFn   func(w donburi.World, entity *donburi.Entity) error
	now       func() time.Time

	replicationTicks int
	tick             atomic.Uint32
	nextID           netconfig.PlayerID
	appSeq           uint64
	spawned          int

	// peers is written by callbacks (connect) and the loop (join, leave).
	mu       sync.RWMutex
	peers    map[Conn]*peer
	byPlayer map[netconfig.PlayerID]*peer
}

// NewServer creates a server for cfg. The arena supplies spawn points.
func NewServer(cfg config.ServerConfig, arena *leveldata.Arena, log *zap.SugaredLogger) *Server {
	if arena == nil {
		arena = &leveldata.Arena{}
	}
	metrics := &Metrics{}
	s := &Server{
		cfg:              cfg,
		log:              log.Named("server"),
		metrics:          metrics,
		tokens:           NewTokenIssuer(cfg.JWTSecret, cfg.TokenIssuer, cfg.TokenTTL),
		arena:            arena,
		sim:              sim.NewContext(log.Named("sim")),
		inbox:            network.NewQueue[command](inboxSize, func() { metrics.InboxOverflow.Add(1) }),
		syncFn:           srvsync.DoSync,
		trackFn:          trackPlayer,
		now:              time.Now,
		replicationTicks: cfg.ReplicationTicks(),
		peers:            make(map[Conn]*peer),
		byPlayer:         make(map[netconfig.PlayerID]*peer),
	}
	s.loop = NewGameLoop(s, cfg.TickRate, s.log)

	// Set up the world for esync
	srvsync.UseEsync(s.sim.World())

	s.sim.ECS.AddSystem(NewAuthoritativeSystem(s.sim, metrics))
	return s
}

// Start begins the server on the configured port. It blocks until the
// transport stops.
func (s *Server) Start() error {
	s.setupRouterCallbacks()

	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(s.cfg.Port, "", nil)
	return s.transport.Start()
}

// Stop halts the game loop.
func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		s.onConnect(client)
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.onDisconnect(client, err)
	})

	router.On(func(client *router.NetworkClient, req messages.JoinRequest) {
		s.onJoin(client, req)
	})

	router.On(func(client *router.NetworkClient, input messages.PlayerInput) {
		s.onPlayerInput(client, input)
	})

	router.On(func(client *router.NetworkClient, msg messages.AppMessage) {
		s.onAppMessage(client, msg)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		s.log.Warnw("client error", "client", client.Id(), "error", err)
	})
}

// onConnect registers a pending peer. No simulation state exists until the
// peer's join is accepted.
func (s *Server) onConnect(conn Conn) {
	s.log.Infow("client connected", "client", conn.Id())

	s.mu.Lock()
	s.peers[conn] = &peer{
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(s.cfg.InputRate), s.cfg.InputBurst),
	}
	s.mu.Unlock()
}

func (s *Server) onDisconnect(conn Conn, err error) {
	if err != nil {
		s.log.Infow("client disconnected", "client", conn.Id(), "error", err)
	} else {
		s.log.Infow("client disconnected", "client", conn.Id())
	}
	s.inbox.Push(command{kind: cmdLeave, conn: conn, err: err})
}

func (s *Server) onJoin(conn Conn, req messages.JoinRequest) {
	s.inbox.Push(command{kind: cmdJoin, conn: conn, join: req})
}

// onPlayerInput applies the per-connection rate limit before staging input.
func (s *Server) onPlayerInput(conn Conn, input messages.PlayerInput) {
	s.mu.RLock()
	p, ok := s.peers[conn]
	confirmed := ok && p.confirmed
	s.mu.RUnlock()

	if !confirmed {
		s.metrics.Unconfirmed.Add(1)
		return
	}
	if !p.limiter.Allow() {
		s.metrics.RateLimited.Add(1)
		return
	}
	s.inbox.Push(command{kind: cmdInput, conn: conn, input: input})
}

func (s *Server) onAppMessage(conn Conn, msg messages.AppMessage) {
	s.inbox.Push(command{kind: cmdApp, conn: conn, app: msg})
}

// Tick runs one fixed simulation step: drain staged network commands, expire
// silent peers, advance every player and replicate on the replication interval.
func (s *Server) Tick() {
	start := s.now()
	tick := s.sim.Advance()
	s.tick.Store(uint32(tick))

	for _, cmd := range s.inbox.Drain() {
		s.apply(cmd)
	}
	s.expireSilentPeers()

	s.sim.ECS.Update()
	s.sim.FlushEvents()

	if int(tick)%s.replicationTicks == 0 {
		s.metrics.Syncs.Add(1)
		if err := s.syncFn(); err != nil {
			s.metrics.SyncErrors.Add(1)
			s.log.Warnw("sync error", "tick", tick, "error", err)
		}
	}

	s.metrics.ObserveTick(s.now().Sub(start), time.Second/time.Duration(s.cfg.TickRate))
}

func (s *Server) apply(cmd command) {
	switch cmd.kind {
	case cmdJoin:
		s.handleJoin(cmd.conn, cmd.join)
	case cmdInput:
		s.handleInput(cmd.conn, cmd.input)
	case cmdApp:
		s.handleAppMessage(cmd.conn, cmd.app)
	case cmdLeave:
		s.handleLeave(cmd.conn)
	}
}

func (s *Server) handleJoin(conn Conn, req messages.JoinRequest) {
	s.mu.RLock()
	p, ok := s.peers[conn]
	s.mu.RUnlock()
	if !ok {
		// Disconnected before the join was processed.
		return
	}
	if p.confirmed {
		s.log.Debugw("ignoring repeated join", "client", conn.Id(), "player", p.id)
		return
	}

	id, err := s.admit(req)
	if err != nil {
		s.metrics.RejectedJoins.Add(1)
		s.log.Infow("join rejected", "client", conn.Id(), "name", req.PlayerName, "error", err)
		if sendErr := conn.SendMessage(messages.JoinRejected{Reason: err.Error()}); sendErr != nil {
			s.metrics.SendFailures.Add(1)
		}
		return
	}

	entry, err := s.confirmPlayer(id)
	if err != nil {
		s.metrics.RejectedJoins.Add(1)
		s.log.Errorw("failed to spawn player", "player", id, "error", err)
		_ = conn.SendMessage(messages.JoinRejected{Reason: "spawn failed"})
		return
	}

	token, err := s.tokens.Issue(id)
	if err != nil {
		s.log.Warnw("reconnect token", "player", id, "error", err)
	}

	var netID esync.NetworkId
	if nid := esync.GetNetworkId(entry); nid != nil {
		netID = *nid
	}

	s.mu.Lock()
	p.id = id
	p.name = req.PlayerName
	p.confirmed = true
	s.byPlayer[id] = p
	s.mu.Unlock()

	s.metrics.Confirmed.Add(1)
	s.metrics.Players.Store(int64(s.sim.PlayerCount()))
	s.log.Infow("player joined", "client", conn.Id(), "player", id, "networkID", netID, "name", req.PlayerName)

	err = conn.SendMessage(messages.JoinAccepted{
		PlayerID:         id,
		NetworkID:        netID,
		ReconnectToken:   token,
		ServerName:       s.cfg.Name,
		TickRate:         s.cfg.TickRate,
		ServerTick:       s.sim.Tick,
		ReplicationTicks: s.replicationTicks,
	})
	if err != nil {
		s.metrics.SendFailures.Add(1)
		s.log.Warnw("failed to send join accept, dropping player", "player", id, "error", err)
		s.dropPlayer(p, "accept failed")
	}
}

// admit validates a join request and returns the identity to use.
func (s *Server) admit(req messages.JoinRequest) (netconfig.PlayerID, error) {
	if s.cfg.RequiredVersion != "" && req.Version != s.cfg.RequiredVersion {
		return 0, fmt.Errorf("%w: server %s, client %q", ErrVersionMismatch, s.cfg.RequiredVersion, req.Version)
	}
	if s.sim.PlayerCount() >= s.cfg.MaxPlayers {
		return 0, ErrServerFull
	}

	if req.ReconnectToken != "" {
		id, err := s.tokens.Verify(req.ReconnectToken)
		if err != nil {
			return 0, err
		}
		if !s.sim.HasPlayer(id) {
			return id, nil
		}
		// The identity is live on another connection; hand out a new one.
	}

	for {
		s.nextID++
		if !s.sim.HasPlayer(s.nextID) {
			return s.nextID, nil
		}
	}
}

// confirmPlayer creates the authoritative entity and marks it for sync.
func (s *Server) confirmPlayer(id netconfig.PlayerID) (*donburi.Entry, error) {
	spawn := s.arena.Spawn(s.spawned)
	s.spawned++

	entry := s.sim.OnPlayerConfirmed(id, sim.SpawnOptions{
		Kind:        components.ControlUnowned,
		Position:    math.Vec2{X: spawn.X, Y: spawn.Y},
		HistorySize: s.cfg.HistorySize,
	})
	components.ServerInput.Get(entry).LastReceived = s.now()

	entity := entry.Entity()
	if err := s.trackFn(s.sim.World(), &entity); err != nil {
		s.sim.OnPlayerDisconnected(id, "sync setup failed")
		return nil, fmt.Errorf("network sync: %w", err)
	}
	return entry, nil
}

// trackPlayer marks a player entity for replication. Position is
// interpolated on clients; identity and tick state are copied as-is.
func trackPlayer(w donburi.World, entity *donburi.Entity) error {
	return srvsync.NetworkSync(w, entity,
		srvsync.WithInterp(netcomponents.PlayerPosition),
		netcomponents.PlayerId,
		netcomponents.PlayerState,
	)
}

func (s *Server) handleInput(conn Conn, input messages.PlayerInput) {
	s.mu.RLock()
	p, ok := s.peers[conn]
	confirmed := ok && p.confirmed
	s.mu.RUnlock()
	if !confirmed {
		s.metrics.Unconfirmed.Add(1)
		return
	}

	if err := network.CheckInputAuthority(p.id, input.PlayerID); err != nil {
		s.metrics.Spoofed.Add(1)
		s.log.Warnw("rejected input", "client", conn.Id(), "error", err)
		return
	}

	entry, ok := s.sim.Player(p.id)
	if !ok {
		return
	}
	accepted, late := BufferInput(components.ServerInput.Get(entry), input.Samples, s.now())
	s.metrics.InputsAccepted.Add(int64(accepted))
	s.metrics.InputsLate.Add(int64(late))
}

// handleAppMessage stamps the sender and echoes the message to every
// confirmed peer.
func (s *Server) handleAppMessage(conn Conn, msg messages.AppMessage) {
	s.mu.RLock()
	p, ok := s.peers[conn]
	if !ok || !p.confirmed {
		s.mu.RUnlock()
		s.metrics.Unconfirmed.Add(1)
		return
	}
	targets := make([]*peer, 0, len(s.byPlayer))
	for _, other := range s.byPlayer {
		targets = append(targets, other)
	}
	s.mu.RUnlock()

	s.appSeq++
	msg.Seq = s.appSeq
	msg.From = p.id
	s.metrics.AppMessages.Add(1)

	for _, target := range targets {
		if err := target.conn.SendMessage(msg); err != nil {
			s.metrics.SendFailures.Add(1)
			s.log.Warnw("app message send failed", "player", target.id, "error", err)
		}
	}
}

func (s *Server) handleLeave(conn Conn) {
	s.mu.Lock()
	p, ok := s.peers[conn]
	delete(s.peers, conn)
	s.mu.Unlock()
	if !ok {
		return
	}
	s.metrics.Disconnects.Add(1)
	if p.confirmed {
		s.dropPlayer(p, "disconnected")
	}
}

// expireSilentPeers treats confirmed peers without input for the client
// timeout as disconnected. The peer is told through JoinRejected so it can
// leave the game; the connection stays pending and may join again.
func (s *Server) expireSilentPeers() {
	now := s.now()
	for _, id := range s.sim.PlayerIDs() {
		entry, ok := s.sim.Player(id)
		if !ok || !entry.HasComponent(components.ServerInput) {
			continue
		}
		if now.Sub(components.ServerInput.Get(entry).LastReceived) <= s.cfg.ClientTimeout {
			continue
		}

		s.mu.RLock()
		p := s.byPlayer[id]
		s.mu.RUnlock()

		s.metrics.Timeouts.Add(1)
		s.log.Infow("player timed out", "player", id, "timeout", s.cfg.ClientTimeout)
		if p != nil {
			conn := p.conn
			s.dropPlayer(p, "timeout")
			if err := conn.SendMessage(messages.JoinRejected{Reason: ErrTimedOut.Error()}); err != nil {
				s.metrics.SendFailures.Add(1)
				s.log.Warnw("timeout notice send failed", "player", id, "error", err)
			}
		} else {
			s.sim.OnPlayerDisconnected(id, "timeout")
		}
	}
}

// dropPlayer discards the player's entity, buffered input and identity.
func (s *Server) dropPlayer(p *peer, reason string) {
	s.sim.OnPlayerDisconnected(p.id, reason)

	s.mu.Lock()
	delete(s.byPlayer, p.id)
	p.confirmed = false
	p.id = 0
	s.mu.Unlock()

	s.metrics.Players.Store(int64(s.sim.PlayerCount()))
}

// Metrics returns the server counters.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// CurrentTick returns the last started tick. Safe from any goroutine.
func (s *Server) CurrentTick() netconfig.Tick {
	return netconfig.Tick(s.tick.Load())
}

// PlayerCount returns the number of confirmed players. Safe from any goroutine.
func (s *Server) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPlayer)
}

// Position returns the authoritative position of a player. Loop goroutine only.
func (s *Server) Position(id netconfig.PlayerID) (math.Vec2, bool) {
	return s.sim.Position(id)
}
