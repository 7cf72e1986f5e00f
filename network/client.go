package network

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/automoto/elfwalk-mp/shared/messages"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"go.uber.org/zap"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoinedGame:
		return "joined"
	case StateError:
		return "error"
	}
	return "unknown"
}

var ErrNotConnected = errors.New("not connected")

const (
	snapshotInboxSize = 32
	appInboxSize      = 64
)

// Client manages a WebSocket connection to the game server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state          ClientState
	lastError      error
	identity       Identity
	reconnectToken string
	serverName     string
	tickRate       int
	serverTick     netconfig.Tick
	replication    int
	conn           *websocket.Conn

	snapshots *Queue[[]Snapshot]
	appInbox  *Queue[messages.AppMessage]

	log     *zap.SugaredLogger
	metrics *Metrics
}

func NewClient(log *zap.SugaredLogger, metrics *Metrics) *Client {
	if metrics == nil {
		metrics = &Metrics{}
	}
	overflow := func() { metrics.InboxOverflow.Add(1) }
	return &Client{
		state:     StateDisconnected,
		snapshots: NewQueue[[]Snapshot](snapshotInboxSize, overflow),
		appInbox:  NewQueue[messages.AppMessage](appInboxSize, overflow),
		log:       log.Named("client"),
		metrics:   metrics,
	}
}

// Connect dials the server in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address string, join messages.JoinRequest) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		c.log.Infow("connected to server", "address", address)
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		if err := c.SendMessage(join); err != nil {
			c.setError(fmt.Errorf("failed to send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		c.log.Infow("join accepted",
			"player", msg.PlayerID, "networkID", msg.NetworkID,
			"server", msg.ServerName, "tickRate", msg.TickRate, "serverTick", msg.ServerTick)
		c.mu.Lock()
		c.identity = Identity{PlayerID: msg.PlayerID, NetworkID: msg.NetworkID}
		c.reconnectToken = msg.ReconnectToken
		c.serverName = msg.ServerName
		c.tickRate = msg.TickRate
		c.serverTick = msg.ServerTick
		c.replication = msg.ReplicationTicks
		c.state = StateJoinedGame
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		c.log.Warnw("join rejected", "reason", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		snaps, err := DecodeWorldSnapshot(snapshot)
		if err != nil {
			c.log.Debugw("snapshot decode", "error", err)
		}
		c.metrics.SnapshotsReceived.Add(1)
		c.snapshots.Push(snaps)
	})

	router.On(func(_ *router.NetworkClient, msg messages.AppMessage) {
		c.appInbox.Push(msg)
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		c.log.Infow("disconnected", "error", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		c.log.Warnw("router error", "error", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Identity returns the confirmed identity; zero until the join is accepted.
func (c *Client) Identity() Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

func (c *Client) ReconnectToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reconnectToken
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// ServerTick returns the server tick reported at join time.
func (c *Client) ServerTick() netconfig.Tick {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverTick
}

// ReplicationTicks returns the server's snapshot spacing in ticks.
func (c *Client) ReplicationTicks() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.replication
}

// DrainSnapshots returns every decoded snapshot batch received since the last
// call, oldest first. Non-blocking.
func (c *Client) DrainSnapshots() [][]Snapshot {
	return c.snapshots.Drain()
}

// DrainAppMessages returns all pending application messages, non-blocking.
func (c *Client) DrainAppMessages() []messages.AppMessage {
	return c.appInbox.Drain()
}

// SendInput sends an input batch. Failures are counted and returned; they are
// never retried here.
func (c *Client) SendInput(input messages.PlayerInput) error {
	if err := c.SendMessage(input); err != nil {
		c.metrics.SendFailures.Add(1)
		return err
	}
	c.metrics.InputsSent.Add(1)
	return nil
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.log.Errorw("client error", "error", err)
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}
