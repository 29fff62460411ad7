package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"signal-relay/internal/relay"
)

// Conn adapts a websocket connection to the relay.Conn interface. Outbound
// frames go through a buffered channel drained by WriteLoop; Send never
// blocks the hub worker.
type Conn struct {
	id  string
	ws  *websocket.Conn
	out chan relay.Envelope
}

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

// NewConn wraps an accepted websocket with a fresh connection id.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		id:  uuid.NewString(),
		ws:  ws,
		out: make(chan relay.Envelope, 256),
	}
}

func (c *Conn) ID() string { return c.id }

// Send queues an outbound frame. Returns false (frame dropped) if the
// consumer is too slow to keep the buffer drained.
func (c *Conn) Send(env relay.Envelope) bool {
	select {
	case c.out <- env:
		return true
	default:
		return false
	}
}

// Read blocks until a parseable inbound frame arrives. Returns false once
// the connection is closed. Frames that are not valid envelope JSON are
// skipped here; payload validation is the hub's job.
func (c *Conn) Read(ctx context.Context) (relay.Envelope, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return relay.Envelope{}, false
		}
		if typ != websocket.MessageText && typ != websocket.MessageBinary {
			continue
		}
		var env relay.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			continue
		}
		return env, true
	}
}

// WriteLoop sends outbound frames + periodic pings
// Exits when ctx is cancelled
func (c *Conn) WriteLoop(ctx context.Context) {
	t := time.NewTicker(20 * time.Second)
	defer t.Stop()

	for {
		select {
		case env := <-c.out:
			b, _ := json.Marshal(env)
			_ = c.ws.Write(ctx, websocket.MessageText, b)
		case <-t.C:
			_ = c.ws.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Close closes the websocket normally
func (c *Conn) Close() error { return c.ws.Close(websocket.StatusNormalClosure, "bye") }
