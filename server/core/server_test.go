package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/automoto/elfwalk-mp/config"
	"github.com/automoto/elfwalk-mp/shared/leveldata"
	"github.com/automoto/elfwalk-mp/shared/messages"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"
)

type fakeConn struct {
	id string

	mu   sync.Mutex
	sent []any
	err  error
}

func (c *fakeConn) Id() string { return c.id }

func (c *fakeConn) SendMessage(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) messages() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.sent...)
}

func (c *fakeConn) accepted(t *testing.T) messages.JoinAccepted {
	t.Helper()
	for _, msg := range c.messages() {
		if acc, ok := msg.(messages.JoinAccepted); ok {
			return acc
		}
	}
	t.Fatalf("%s: no JoinAccepted in %v", c.id, c.messages())
	return messages.JoinAccepted{}
}

func (c *fakeConn) rejected(t *testing.T) messages.JoinRejected {
	t.Helper()
	for _, msg := range c.messages() {
		if rej, ok := msg.(messages.JoinRejected); ok {
			return rej
		}
	}
	t.Fatalf("%s: no JoinRejected in %v", c.id, c.messages())
	return messages.JoinRejected{}
}

type testServer struct {
	*Server
	clock time.Time
	syncs int
}

var testArena = &leveldata.Arena{
	Name: "test",
	SpawnPoints: []leveldata.SpawnPoint{
		{X: -10, Y: 5, Index: 0},
		{X: 10, Y: 5, Index: 1},
	},
}

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) *testServer {
	t.Helper()

	cfg := config.DefaultServer()
	cfg.JWTSecret = testSecret
	cfg.RequiredVersion = "1.0"
	if mutate != nil {
		mutate(&cfg)
	}

	ts := &testServer{
		Server: NewServer(cfg, testArena, zap.NewNop().Sugar()),
		clock:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	ts.now = func() time.Time { return ts.clock }
	ts.syncFn = func() error {
		ts.syncs++
		return nil
	}
	var nextNetID esync.NetworkId
	ts.trackFn = func(w donburi.World, entity *donburi.Entity) error {
		nextNetID++
		entry := w.Entry(*entity)
		entry.AddComponent(esync.NetworkIdComponent)
		esync.NetworkIdComponent.SetValue(entry, nextNetID)
		return nil
	}
	return ts
}

// join connects a fake client, sends a join request and runs one tick.
func (ts *testServer) join(t *testing.T, name, token string) (*fakeConn, messages.JoinAccepted) {
	t.Helper()
	conn := &fakeConn{id: name}
	ts.onConnect(conn)
	ts.onJoin(conn, messages.JoinRequest{Version: "1.0", PlayerName: name, ReconnectToken: token})
	ts.Tick()
	return conn, conn.accepted(t)
}

func (ts *testServer) sendInput(conn *fakeConn, id netconfig.PlayerID, from, to netconfig.Tick, dir netconfig.Direction) {
	var samples []messages.InputSample
	for tick := from; tick <= to; tick++ {
		samples = append(samples, messages.InputSample{Tick: tick, Direction: dir})
	}
	ts.onPlayerInput(conn, messages.PlayerInput{PlayerID: id, Samples: samples})
}

func (ts *testServer) position(t *testing.T, id netconfig.PlayerID) math.Vec2 {
	t.Helper()
	pos, ok := ts.Position(id)
	if !ok {
		t.Fatalf("player %d does not exist", id)
	}
	return pos
}

func TestJoinAccepted(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	_, acc := ts.join(t, "alice", "")

	if acc.PlayerID != 1 || acc.NetworkID != 1 {
		t.Fatalf("expected player 1 on entity 1, got %+v", acc)
	}
	if acc.ServerTick != 1 || acc.TickRate != 60 || acc.ReplicationTicks != 6 {
		t.Fatalf("unexpected timing in accept: %+v", acc)
	}
	if id, err := ts.tokens.Verify(acc.ReconnectToken); err != nil || id != 1 {
		t.Fatalf("expected a reconnect token for player 1, got %d (%v)", id, err)
	}
	if ts.PlayerCount() != 1 {
		t.Fatalf("expected 1 player, got %d", ts.PlayerCount())
	}
	if pos := ts.position(t, 1); pos != (math.Vec2{X: -10, Y: 5}) {
		t.Fatalf("expected first spawn point, got %+v", pos)
	}
}

func TestRepeatedJoinIgnored(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	conn, _ := ts.join(t, "alice", "")
	ts.onJoin(conn, messages.JoinRequest{Version: "1.0"})
	ts.Tick()

	if ts.PlayerCount() != 1 || len(conn.messages()) != 1 {
		t.Fatalf("expected the second join ignored, got %d players and %d messages",
			ts.PlayerCount(), len(conn.messages()))
	}
}

func TestJoinRejected(t *testing.T) {
	t.Parallel()

	t.Run("version", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, nil)
		conn := &fakeConn{id: "old"}
		ts.onConnect(conn)
		ts.onJoin(conn, messages.JoinRequest{Version: "0.9"})
		ts.Tick()

		if rej := conn.rejected(t); !strings.Contains(rej.Reason, ErrVersionMismatch.Error()) {
			t.Fatalf("expected version mismatch, got %q", rej.Reason)
		}
		if ts.PlayerCount() != 0 || ts.Metrics().RejectedJoins.Load() != 1 {
			t.Fatal("expected no player and one rejected join")
		}
	})

	t.Run("full", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, func(c *config.ServerConfig) { c.MaxPlayers = 1 })
		ts.join(t, "alice", "")

		conn := &fakeConn{id: "bob"}
		ts.onConnect(conn)
		ts.onJoin(conn, messages.JoinRequest{Version: "1.0"})
		ts.Tick()

		if rej := conn.rejected(t); rej.Reason != ErrServerFull.Error() {
			t.Fatalf("expected server full, got %q", rej.Reason)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, nil)
		conn := &fakeConn{id: "mallory"}
		ts.onConnect(conn)
		ts.onJoin(conn, messages.JoinRequest{Version: "1.0", ReconnectToken: "forged"})
		ts.Tick()

		if rej := conn.rejected(t); !strings.Contains(rej.Reason, ErrInvalidToken.Error()) {
			t.Fatalf("expected invalid token, got %q", rej.Reason)
		}
	})
}

func TestReconnectTokenRestoresIdentity(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	ts.join(t, "alice", "")
	conn, acc := ts.join(t, "bob", "")
	if acc.PlayerID != 2 {
		t.Fatalf("expected player 2, got %d", acc.PlayerID)
	}

	ts.onDisconnect(conn, nil)
	ts.Tick()
	if _, ok := ts.Position(2); ok {
		t.Fatal("expected player 2 despawned after disconnect")
	}

	_, again := ts.join(t, "bob", acc.ReconnectToken)
	if again.PlayerID != 2 {
		t.Fatalf("expected identity 2 restored, got %d", again.PlayerID)
	}

	// A token whose identity is live gets a fresh id.
	_, dup := ts.join(t, "bob-copy", again.ReconnectToken)
	if dup.PlayerID == 2 {
		t.Fatal("expected a new identity while player 2 is connected")
	}
}

func TestInputAdvancesOneTickPerTick(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	conn, acc := ts.join(t, "alice", "")
	start := ts.position(t, acc.PlayerID)

	ts.sendInput(conn, acc.PlayerID, 1, 3, netconfig.Direction{Right: true})
	for range 3 {
		ts.Tick()
	}

	pos := ts.position(t, acc.PlayerID)
	if !closeTo(pos.X-start.X, 1.2) || pos.Y != start.Y {
		t.Fatalf("expected +1.2 on x, got %+v from %+v", pos, start)
	}
	if ts.Metrics().InputsAccepted.Load() != 3 {
		t.Fatalf("expected 3 accepted samples, got %d", ts.Metrics().InputsAccepted.Load())
	}

	starvedBefore := ts.Metrics().StarvedTicks.Load()
	ts.Tick()
	if ts.Metrics().StarvedTicks.Load() != starvedBefore+1 {
		t.Fatal("expected a starved tick once the queue ran dry")
	}
	if after := ts.position(t, acc.PlayerID); after != pos {
		t.Fatalf("expected no movement while starved, got %+v", after)
	}
}

func TestSpoofedInputRejected(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	alice, a := ts.join(t, "alice", "")
	_, b := ts.join(t, "bob", "")
	bobStart := ts.position(t, b.PlayerID)

	ts.sendInput(alice, b.PlayerID, 1, 3, netconfig.Direction{Up: true})
	ts.Tick()

	if ts.Metrics().Spoofed.Load() != 1 {
		t.Fatalf("expected 1 spoofed input, got %d", ts.Metrics().Spoofed.Load())
	}
	if pos := ts.position(t, b.PlayerID); pos != bobStart {
		t.Fatalf("spoofed input moved bob to %+v", pos)
	}
	if _, ok := ts.Position(a.PlayerID); !ok {
		t.Fatal("expected the spoofing player to stay connected")
	}
}

func TestInputBeforeJoinIgnored(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	conn := &fakeConn{id: "early"}
	ts.onConnect(conn)
	ts.sendInput(conn, 1, 1, 2, netconfig.Direction{Right: true})
	ts.Tick()

	if ts.Metrics().Unconfirmed.Load() != 1 {
		t.Fatalf("expected 1 unconfirmed input, got %d", ts.Metrics().Unconfirmed.Load())
	}
}

func TestInputRateLimited(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, func(c *config.ServerConfig) {
		c.InputRate = 1
		c.InputBurst = 2
	})
	conn, acc := ts.join(t, "alice", "")

	for i := range 3 {
		tick := netconfig.Tick(i + 1)
		ts.sendInput(conn, acc.PlayerID, tick, tick, netconfig.Direction{Right: true})
	}
	if ts.Metrics().RateLimited.Load() != 1 {
		t.Fatalf("expected 1 rate-limited message, got %d", ts.Metrics().RateLimited.Load())
	}
}

func TestSilentPlayerTimesOut(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	conn, acc := ts.join(t, "alice", "")

	ts.clock = ts.clock.Add(ts.cfg.ClientTimeout / 2)
	ts.sendInput(conn, acc.PlayerID, 1, 1, netconfig.Direction{})
	ts.Tick()

	ts.clock = ts.clock.Add(ts.cfg.ClientTimeout / 2)
	ts.Tick()
	if ts.PlayerCount() != 1 {
		t.Fatal("expected input to keep the player alive")
	}

	ts.clock = ts.clock.Add(ts.cfg.ClientTimeout)
	ts.Tick()
	if ts.PlayerCount() != 0 || ts.Metrics().Timeouts.Load() != 1 {
		t.Fatalf("expected timeout, got %d players and %d timeouts", ts.PlayerCount(), ts.Metrics().Timeouts.Load())
	}
	if _, ok := ts.Position(acc.PlayerID); ok {
		t.Fatal("expected entity removed")
	}
	if rej := conn.rejected(t); rej.Reason != ErrTimedOut.Error() {
		t.Fatalf("expected timeout notice, got %q", rej.Reason)
	}

	// The connection stays and may join again.
	ts.onJoin(conn, messages.JoinRequest{Version: "1.0", ReconnectToken: acc.ReconnectToken})
	ts.Tick()
	if ts.PlayerCount() != 1 {
		t.Fatal("expected rejoin on the same connection")
	}
}

func TestStopBeforeStartReturns(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	done := make(chan struct{})
	go func() {
		ts.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked before Start")
	}
}

func TestAppMessageEchoedToConfirmedPeers(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	alice, a := ts.join(t, "alice", "")
	bob, _ := ts.join(t, "bob", "")
	pending := &fakeConn{id: "pending"}
	ts.onConnect(pending)

	ts.onAppMessage(alice, messages.AppMessage{Body: "hello", From: 99})
	ts.Tick()

	for _, conn := range []*fakeConn{alice, bob} {
		var got []messages.AppMessage
		for _, msg := range conn.messages() {
			if app, ok := msg.(messages.AppMessage); ok {
				got = append(got, app)
			}
		}
		if len(got) != 1 || got[0].From != a.PlayerID || got[0].Seq != 1 || got[0].Body != "hello" {
			t.Fatalf("%s: unexpected app messages %+v", conn.id, got)
		}
	}
	if len(pending.messages()) != 0 {
		t.Fatal("expected pending peers excluded from the echo")
	}
}

func TestFailedAcceptDropsPlayer(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	conn := &fakeConn{id: "broken", err: fmt.Errorf("closed")}
	ts.onConnect(conn)
	ts.onJoin(conn, messages.JoinRequest{Version: "1.0"})
	ts.Tick()

	if ts.PlayerCount() != 0 {
		t.Fatal("expected player dropped after failed accept")
	}
	if ts.Metrics().SendFailures.Load() != 1 {
		t.Fatalf("expected 1 send failure, got %d", ts.Metrics().SendFailures.Load())
	}
}

func TestReplicationInterval(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	for range 30 {
		ts.Tick()
	}
	if ts.syncs != 5 {
		t.Fatalf("expected a sync every 6 ticks, got %d in 30", ts.syncs)
	}
	if ts.CurrentTick() != 30 {
		t.Fatalf("expected tick 30, got %d", ts.CurrentTick())
	}
}

func TestAdminHandler(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	ts.join(t, "alice", "")
	handler := ts.AdminHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Server  string         `json:"server"`
		Tick    uint32         `json:"tick"`
		Players int            `json:"players"`
		Metrics map[string]any `json:"metrics"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Server != ts.cfg.Name || body.Players != 1 || body.Tick != 1 {
		t.Fatalf("unexpected metrics payload %+v", body)
	}
	if body.Metrics["confirmed_joins"] != float64(1) {
		t.Fatalf("expected confirmed_joins=1, got %v", body.Metrics["confirmed_joins"])
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Body.String() != "ok" {
		t.Fatalf("expected ok, got %q", rec.Body.String())
	}
}
