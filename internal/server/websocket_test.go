package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Pranay13257/minibacarat/internal/config"
	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type wsFixture struct {
	hub   *Hub
	table *game.Table
	srv   *httptest.Server
	url   string
}

func testWebSocketConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		Path:           "/ws",
		SendBuffer:     64,
		MaxMessageSize: 4096,
		WriteWait:      time.Second,
		PongWait:       time.Minute,
		PingPeriod:     30 * time.Second,
	}
}

func newWSFixture(t *testing.T, cfg config.WebSocketConfig) *wsFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger)
	go hub.Run(ctx)

	table, _ := newTestTable(t, hub)
	d := NewDispatcher(ctx, table, game.NewAutoDealer(table, logger), logger)
	ws := NewWebSocketServer(ctx, cfg, hub, table, d, logger)

	srv := httptest.NewServer(ws.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		d.Wait()
	})

	return &wsFixture{
		hub:   hub,
		table: table,
		srv:   srv,
		url:   "ws" + strings.TrimPrefix(srv.URL, "http") + cfg.Path,
	}
}

func (f *wsFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

// readUntil skips messages until one with the given action arrives.
func readUntil(t *testing.T, conn *websocket.Conn, action string) map[string]any {
	t.Helper()
	for range 50 {
		m := readMessage(t, conn)
		if m["action"] == action {
			return m
		}
	}
	t.Fatalf("no %s message received", action)
	return nil
}

func TestWebSocketInitialSnapshot(t *testing.T) {
	f := newWSFixture(t, testWebSocketConfig())
	conn := f.dial(t)

	m := readMessage(t, conn)
	assert.Equal(t, "game_state", m["action"])
	assert.Equal(t, "waiting", m["gamePhase"])
	assert.EqualValues(t, 416, m["remainingCards"])
	assert.Equal(t, []any{}, m["playerCards"])

	assert.Eventually(t, func() bool { return f.hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketBroadcastAndReply(t *testing.T) {
	f := newWSFixture(t, testWebSocketConfig())
	dealer := f.dial(t)
	display := f.dial(t)
	readUntil(t, dealer, "game_state")
	readUntil(t, display, "game_state")
	require.Eventually(t, func() bool { return f.hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, dealer.WriteJSON(map[string]any{"action": "update_players", "player_id": 1, "is_active": true}))

	reply := readUntil(t, dealer, "success")
	assert.Equal(t, "Player 1 added", reply["message"])

	state := readUntil(t, display, "game_state")
	assert.Equal(t, []any{"1"}, state["activePlayers"])

	// replies go only to the requester
	require.NoError(t, display.WriteJSON(map[string]any{"action": "undo"}))
	errMsg := readUntil(t, display, "error")
	assert.Equal(t, "No cards to undo", errMsg["message"])
}

func TestWebSocketRoundResultBroadcast(t *testing.T) {
	f := newWSFixture(t, testWebSocketConfig())
	dealer := f.dial(t)
	readUntil(t, dealer, "game_state")

	require.NoError(t, dealer.WriteJSON(map[string]any{"action": "update_players", "player_id": "1", "is_active": true}))
	for _, c := range []string{"8H", "9D", "2C", "KS"} {
		require.NoError(t, dealer.WriteJSON(map[string]any{"action": "add_card", "card": c}))
	}

	result := readUntil(t, dealer, "game_result")
	assert.Equal(t, "banker", result["winner"])
	state := readUntil(t, dealer, "game_state")
	assert.Equal(t, "finished", state["gamePhase"])
	readUntil(t, dealer, "refresh_stats")
}

func TestWebSocketInvalidJSON(t *testing.T) {
	f := newWSFixture(t, testWebSocketConfig())
	conn := f.dial(t)
	readUntil(t, conn, "game_state")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello")))

	m := readUntil(t, conn, "error")
	assert.Equal(t, "Invalid JSON", m["message"])
}

func TestWebSocketOriginCheck(t *testing.T) {
	cfg := testWebSocketConfig()
	cfg.AllowedOrigins = []string{"http://dealer.local"}
	f := newWSFixture(t, cfg)

	header := http.Header{"Origin": []string{"http://elsewhere"}}
	_, resp, err := websocket.DefaultDialer.Dial(f.url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://dealer.local")
	conn, _, err := websocket.DefaultDialer.Dial(f.url, header)
	require.NoError(t, err)
	conn.Close()
}

func TestHealthz(t *testing.T) {
	f := newWSFixture(t, testWebSocketConfig())

	resp, err := http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := &Client{send: make(chan []byte, 1)}
	require.True(t, hub.Register(slow))

	hub.PublishRefreshStats()
	hub.PublishRefreshStats()

	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	msg, ok := <-slow.send
	require.True(t, ok)
	assert.JSONEq(t, `{"action":"refresh_stats"}`, string(msg))
	_, ok = <-slow.send
	assert.False(t, ok, "send channel closed")
}

func TestHubRegisterAfterStop(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.False(t, hub.Register(&Client{send: make(chan []byte, 1)}))
	hub.Unregister(&Client{})
}
