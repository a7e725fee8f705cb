package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflex_drills/internal/catalog"
	"reflex_drills/internal/config"
	"reflex_drills/internal/game"
	"reflex_drills/internal/service"
)

type wireMsg struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type testEnv struct {
	srv    *httptest.Server
	hub    *Hub
	tokens *service.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	games, err := config.LoadGames("")
	require.NoError(t, err)

	striker := games[game.KindStriker]
	striker.TotalTrials = 2
	striker.ResponseWindow = 3 * time.Second
	striker.FeedbackDwell = 10 * time.Millisecond
	games[game.KindStriker] = striker

	hub := NewHub(games, catalog.Default())
	tokens, err := service.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/ws", HandleWS(hub, tokens, ""))
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		hub.Shutdown()
		srv.Close()
	})
	return &testEnv{srv: srv, hub: hub, tokens: tokens}
}

func (e *testEnv) url(token, kind string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("game", kind)
	return "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws?" + q.Encode()
}

func (e *testEnv) dial(t *testing.T, token, kind string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(e.url(token, kind), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (e *testEnv) guest(t *testing.T) (string, string) {
	t.Helper()
	id, token, err := e.tokens.NewGuest()
	require.NoError(t, err)
	return id, token
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(wireMsg) bool) wireMsg {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var m wireMsg
		require.NoError(t, json.Unmarshal(data, &m))
		if match(m) {
			return m
		}
	}
}

func snapshotIn(t *testing.T, conn *websocket.Conn, phase game.Phase, trial int) game.Snapshot {
	t.Helper()
	var snap game.Snapshot
	readUntil(t, conn, func(m wireMsg) bool {
		if m.Type != MsgSnapshot {
			return false
		}
		require.NoError(t, json.Unmarshal(m.Payload, &snap))
		return snap.Phase == phase && (trial == 0 || snap.Trial == trial)
	})
	return snap
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func TestStrikerSessionOverWebSocket(t *testing.T) {
	env := newTestEnv(t)
	playerID, token := env.guest(t)
	conn := env.dial(t, token, "striker")

	ready := readUntil(t, conn, func(m wireMsg) bool { return m.Type == MsgReady })
	var rp ReadyPayload
	require.NoError(t, json.Unmarshal(ready.Payload, &rp))
	assert.Equal(t, playerID, rp.PlayerID)
	assert.Equal(t, game.KindStriker, rp.Game)
	assert.Equal(t, 2, rp.Total)
	assert.EqualValues(t, 3000, rp.WindowMS)

	send(t, conn, ClientMessage{Type: MsgStart})

	for trial, answer := range []string{"shoot", "pass"} {
		open := snapshotIn(t, conn, game.PhaseResponseOpen, trial+1)
		require.NotNil(t, open.Scenario)
		assert.Empty(t, open.Scenario.Action)

		send(t, conn, ClientMessage{Type: MsgInput, Value: answer, TS: time.Now().UnixMilli()})

		fb := snapshotIn(t, conn, game.PhaseFeedback, trial+1)
		require.NotNil(t, fb.Last)
		require.NotNil(t, fb.Scenario)
		assert.Equal(t, game.Action(answer), fb.Last.Response.Action)
		assert.Equal(t, fb.Scenario.Action == game.Action(answer), fb.Last.Correct)
	}

	done := snapshotIn(t, conn, game.PhaseTerminal, 0)
	require.NotNil(t, done.Summary)
	assert.Equal(t, 2, done.Summary.Total)

	send(t, conn, ClientMessage{Type: MsgRestart})
	again := snapshotIn(t, conn, game.PhaseResponseOpen, 1)
	assert.Equal(t, 0, again.Completed)
}

func TestBadMessagesAreAnswered(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.guest(t)
	conn := env.dial(t, token, "scan")
	readUntil(t, conn, func(m wireMsg) bool { return m.Type == MsgReady })

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	readUntil(t, conn, func(m wireMsg) bool { return m.Type == MsgError })

	send(t, conn, ClientMessage{Type: MsgInput, Value: "9"})
	bad := readUntil(t, conn, func(m wireMsg) bool { return m.Type == MsgError })
	assert.Contains(t, string(bad.Payload), "invalid input")

	send(t, conn, ClientMessage{Type: "dance"})
	bad = readUntil(t, conn, func(m wireMsg) bool { return m.Type == MsgError })
	assert.Contains(t, string(bad.Payload), "unknown message type")

	send(t, conn, ClientMessage{Type: MsgPing})
	readUntil(t, conn, func(m wireMsg) bool { return m.Type == MsgPong })
}

func TestHandshakeRejections(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.guest(t)

	tests := []struct {
		name  string
		token string
		game  string
		code  int
	}{
		{"missing token", "", "arrow", http.StatusUnauthorized},
		{"bad token", "junk", "arrow", http.StatusUnauthorized},
		{"unknown game", token, "chess", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(env.url(tt.token, tt.game), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestReconnectReplacesSession(t *testing.T) {
	env := newTestEnv(t)
	playerID, token := env.guest(t)

	first := env.dial(t, token, "arrow")
	readUntil(t, first, func(m wireMsg) bool { return m.Type == MsgReady })

	second := env.dial(t, token, "scan")
	ready := readUntil(t, second, func(m wireMsg) bool { return m.Type == MsgReady })
	var rp ReadyPayload
	require.NoError(t, json.Unmarshal(ready.Payload, &rp))

	require.NoError(t, first.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}

	host, ok := env.hub.Host(playerID)
	require.True(t, ok)
	assert.Equal(t, rp.SessionID, host.SessionID())
	assert.Equal(t, game.KindScan, host.Kind)
	assert.Equal(t, 1, env.hub.Active())
}
