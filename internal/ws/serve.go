package ws

import (
	"log/slog"
	"net/http"
	"strconv"

	"signal-relay/internal/relay"
)

// Server glues accepted websockets to the relay hub.
type Server struct {
	log *slog.Logger
	hub *relay.Hub
}

func NewServer(logger *slog.Logger, hub *relay.Hub) *Server {
	return &Server{log: logger, hub: hub}
}

// ServeWS handles a new /ws connection. The initiator flag rides on the
// query string, mirroring the handshake the clients already send.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	initiator, _ := strconv.ParseBool(r.URL.Query().Get("initiator"))

	conn, err := Accept(w, r)
	if err != nil {
		s.log.Error("ws.accept", "err", err)
		return
	}

	ctx := r.Context()
	c := NewConn(conn)

	// Outbound writer
	go c.WriteLoop(ctx)

	s.hub.Connect(c, r.RemoteAddr, initiator)

	// Inbound reader: each frame goes to the hub queue in arrival order.
	for {
		env, ok := c.Read(ctx)
		if !ok {
			break
		}
		s.hub.Deliver(c, env)
	}

	s.hub.Disconnect(c)
	_ = c.Close()
}
