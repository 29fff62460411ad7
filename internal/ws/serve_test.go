package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"signal-relay/internal/relay"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hub := relay.New(logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	wsrv := NewServer(logger, hub)
	srv := httptest.NewServer(http.HandlerFunc(wsrv.ServeWS))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, ctx context.Context, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	return conn
}

// waitFor reads frames until one with the wanted event name arrives.
func waitFor(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) relay.Envelope {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err, "waiting for %q", event)
		var env relay.Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		if env.Event == event {
			return env
		}
	}
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, env relay.Envelope) {
	t.Helper()
	b, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, b))
}

type rosterFrame struct {
	Users []relay.RosterEntry `json:"users"`
}

func TestServeWS_RosterAndSignal(t *testing.T) {
	srv := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a := dial(t, ctx, srv)
	defer a.Close(websocket.StatusNormalClosure, "")

	env := waitFor(t, ctx, a, "users")
	var roster rosterFrame
	require.NoError(t, json.Unmarshal(env.Data, &roster))
	require.Len(t, roster.Users, 1)
	aID := roster.Users[0].ID

	b := dial(t, ctx, srv)
	defer b.Close(websocket.StatusNormalClosure, "")

	env = waitFor(t, ctx, b, "users")
	require.NoError(t, json.Unmarshal(env.Data, &roster))
	require.Len(t, roster.Users, 2)

	var bID string
	for _, e := range roster.Users {
		if e.ID != aID {
			bID = e.ID
		}
	}
	require.NotEmpty(t, bID)

	// B signals A point-to-point
	sig, _ := json.Marshal(map[string]any{"id": aID, "signal": "offer-sdp"})
	send(t, ctx, b, relay.Envelope{Event: "signal", Data: sig})

	env = waitFor(t, ctx, a, "signal")
	var got struct {
		ID     string          `json:"id"`
		Signal json.RawMessage `json:"signal"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, bID, got.ID, "forwarded frame tagged with sender id")
	assert.Equal(t, `"offer-sdp"`, string(got.Signal))
}

func TestServeWS_DisconnectNotifiesPeers(t *testing.T) {
	srv := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a := dial(t, ctx, srv)
	defer a.Close(websocket.StatusNormalClosure, "")
	waitFor(t, ctx, a, "users")

	b := dial(t, ctx, srv)
	env := waitFor(t, ctx, b, "users")
	var roster rosterFrame
	require.NoError(t, json.Unmarshal(env.Data, &roster))
	require.Len(t, roster.Users, 2)

	require.NoError(t, b.Close(websocket.StatusNormalClosure, "bye"))

	env = waitFor(t, ctx, a, "disconnect")
	var goneID string
	require.NoError(t, json.Unmarshal(env.Data, &goneID))
	assert.NotEmpty(t, goneID)
}

func TestServeWS_JoinRepliesPeers(t *testing.T) {
	srv := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a := dial(t, ctx, srv)
	defer a.Close(websocket.StatusNormalClosure, "")
	waitFor(t, ctx, a, "users")

	send(t, ctx, a, relay.Envelope{Event: "join", Data: json.RawMessage(`"room1"`)})

	env := waitFor(t, ctx, a, "peers")
	var peers []string
	require.NoError(t, json.Unmarshal(env.Data, &peers))
	assert.Empty(t, peers)
}
