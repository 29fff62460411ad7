package relay

import (
	"context"
	"encoding/json"
	"log/slog"

	"signal-relay/pkg/metrics"
)

type taskKind int

const (
	taskConnect taskKind = iota
	taskDisconnect
	taskEvent
	taskStats
)

type task struct {
	kind       taskKind
	conn       Conn
	remoteAddr string
	initiator  bool
	env        Envelope
	stats      chan Stats
}

// Stats is a point-in-time snapshot for the /stats endpoint.
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

// Hub owns the registry, room directory, and presence tracker. All mutation
// happens on the single Run goroutine, one task at a time, so per-connection
// event order is preserved and the collections need no locks.
type Hub struct {
	log      *slog.Logger
	registry *Registry
	rooms    *Rooms
	presence *Presence
	queue    chan task
}

func New(logger *slog.Logger) *Hub {
	return &Hub{
		log:      logger,
		registry: NewRegistry(),
		rooms:    NewRooms(),
		presence: NewPresence(),
		queue:    make(chan task, 512),
	}
}

// Run processes queued tasks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-h.queue:
			h.handle(t)
		}
	}
}

// Connect enqueues registration of a new transport connection.
func (h *Hub) Connect(c Conn, remoteAddr string, initiator bool) {
	h.queue <- task{kind: taskConnect, conn: c, remoteAddr: remoteAddr, initiator: initiator}
}

// Disconnect enqueues removal of a connection. Always safe to call, even for
// ids the hub never saw.
func (h *Hub) Disconnect(c Conn) {
	h.queue <- task{kind: taskDisconnect, conn: c}
}

// Deliver enqueues one inbound event for dispatch.
func (h *Hub) Deliver(c Conn, env Envelope) {
	h.queue <- task{kind: taskEvent, conn: c, env: env}
}

// Stats asks the worker for a snapshot. Blocks until Run picks it up.
func (h *Hub) Stats() Stats {
	reply := make(chan Stats, 1)
	h.queue <- task{kind: taskStats, stats: reply}
	return <-reply
}

func (h *Hub) handle(t task) {
	switch t.kind {
	case taskConnect:
		h.connect(t.conn, t.remoteAddr, t.initiator)
	case taskDisconnect:
		h.disconnect(t.conn)
	case taskEvent:
		h.dispatch(t.conn, t.env)
	case taskStats:
		t.stats <- Stats{Connections: h.registry.Len(), Rooms: h.rooms.Len()}
	}
}

// connect registers the connection and broadcasts the roster. A duplicate
// connect for a live id is a no-op besides the re-broadcast.
func (h *Hub) connect(c Conn, remoteAddr string, initiator bool) {
	if h.registry.Add(c, remoteAddr, initiator) {
		metrics.Connections.Inc()
		h.log.Info("hub.connect", "conn", c.ID(), "addr", remoteAddr, "initiator", initiator)
	}
	h.broadcastAll(envelope(EvUsers, usersPayload{Users: h.registry.Roster()}))
}

// disconnect removes the connection and cascades: every room the connection
// had joined is detached, and if it carried a user identity that user's
// presence in those rooms is cleared (with the usual out-room broadcast).
func (h *Hub) disconnect(c Conn) {
	if cl, ok := h.registry.Remove(c.ID()); ok {
		metrics.Connections.Dec()
		for room := range cl.rooms {
			h.rooms.Detach(room, c.ID())
			if cl.userID != "" && h.presence.Leave(room, cl.userID) {
				h.broadcastRoom(room, envelope(EvOutRoom, presencePayload{
					Room:   h.presence.List(room),
					UserID: cl.userID,
				}))
			}
		}
		h.log.Info("hub.disconnect", "conn", c.ID())
	}
	raw, _ := json.Marshal(c.ID())
	h.broadcastAll(Envelope{Event: EvDisconnect, Data: raw})
	h.broadcastAll(envelope(EvUser, userPayload{User: h.registry.Roster(), Event: "offline"}))
}

func (h *Hub) dispatch(c Conn, env Envelope) {
	switch env.Event {
	case EvOnline:
		h.onOnline(c, env.Data)
	case EvSubscribe:
		h.onSubscribe(c, env.Data)
	case EvUnsubscribe:
		h.onUnsubscribe(c, env.Data)
	case EvInRoom:
		h.onInRoom(c, env.Data)
	case EvOutRoom:
		h.onOutRoom(c, env.Data)
	case EvStartTyping, EvStopTyping:
		h.onTyping(c, env.Event, env.Data)
	case EvStartCall, EvChatCall:
		h.onCallRelay(c, env.Event, env.Data)
	case EvRejectCall, EvInCall, EvStopCall:
		h.onCallNotice(c, env.Event, env.Data)
	case EvJoin:
		h.onJoin(c, env.Data)
	case EvLeave:
		h.onLeave(c, env.Data)
	case EvSignal:
		h.onSignal(c, env.Data)
	default:
		metrics.Events.WithLabelValues("unknown").Inc()
		h.log.Debug("hub.event.unknown", "conn", c.ID(), "event", env.Event)
		return
	}
	metrics.Events.WithLabelValues(env.Event).Inc()
}

// onOnline attaches a user identity and broadcasts the roster tagged online.
func (h *Hub) onOnline(c Conn, data json.RawMessage) {
	var userID string
	if err := json.Unmarshal(data, &userID); err != nil || userID == "" {
		c.Send(errEnvelope("online: userId required"))
		return
	}
	h.registry.SetUser(c.ID(), userID)
	h.broadcastAll(envelope(EvUser, userPayload{User: h.registry.Roster(), Event: "online"}))
}

// onSubscribe attaches the caller to a room. The join notice goes out first,
// so the joiner does not receive its own notice. Re-subscribing still
// re-broadcasts.
func (h *Hub) onSubscribe(c Conn, data json.RawMessage) {
	room, ok := h.roomArg(c, data, "subscribe")
	if !ok {
		return
	}
	h.broadcastRoom(room, envelope(EvUser, userPayload{Room: room, Event: "join"}))
	h.attach(c, room)
}

// onUnsubscribe detaches only the caller from the room; other members and
// same-named bookkeeping are untouched. Notice goes out while the caller is
// still a member, matching the join side.
func (h *Hub) onUnsubscribe(c Conn, data json.RawMessage) {
	room, ok := h.roomArg(c, data, "unsubscribe")
	if !ok {
		return
	}
	h.broadcastRoom(room, envelope(EvUser, userPayload{Room: room, Event: "leave"}))
	h.detach(c, room)
}

func (h *Hub) onInRoom(c Conn, data json.RawMessage) {
	var in presenceIn
	if err := json.Unmarshal(data, &in); err != nil || in.Room == "" || in.UserID == "" {
		c.Send(errEnvelope("in-room: room and userId required"))
		return
	}
	h.presence.Enter(in.Room, in.UserID)
	h.broadcastRoom(in.Room, envelope(EvInRoom, presencePayload{
		Room:   h.presence.List(in.Room),
		UserID: in.UserID,
	}))
}

func (h *Hub) onOutRoom(c Conn, data json.RawMessage) {
	var in presenceIn
	if err := json.Unmarshal(data, &in); err != nil || in.Room == "" || in.UserID == "" {
		c.Send(errEnvelope("out-room: room and userId required"))
		return
	}
	h.presence.Leave(in.Room, in.UserID)
	h.broadcastRoom(in.Room, envelope(EvOutRoom, presencePayload{
		Room:   h.presence.List(in.Room),
		UserID: in.UserID,
	}))
}

// onTyping relays start-typing/stop-typing to the room. Stateless; the
// inbound "form" field becomes "user" on the way out.
func (h *Hub) onTyping(c Conn, event string, data json.RawMessage) {
	var in typingIn
	if err := json.Unmarshal(data, &in); err != nil || in.Room == "" {
		c.Send(errEnvelope(event + ": room required"))
		return
	}
	h.broadcastRoom(in.Room, envelope(event, typingOut{Room: in.Room, User: in.Form}))
}

// attach records membership on both the room directory and the connection's
// own room set (the disconnect cascade walks the latter).
func (h *Hub) attach(c Conn, room string) {
	h.rooms.Attach(room, c.ID())
	if cl, ok := h.registry.Get(c.ID()); ok {
		cl.rooms[room] = struct{}{}
	}
}

func (h *Hub) detach(c Conn, room string) {
	h.rooms.Detach(room, c.ID())
	if cl, ok := h.registry.Get(c.ID()); ok {
		delete(cl.rooms, room)
	}
}

// roomArg decodes a bare-string room argument, replying with a typed error
// on malformed input.
func (h *Hub) roomArg(c Conn, data json.RawMessage, op string) (string, bool) {
	var room string
	if err := json.Unmarshal(data, &room); err != nil || room == "" {
		c.Send(errEnvelope(op + ": room required"))
		return "", false
	}
	return room, true
}

// broadcastAll delivers to every registered connection.
func (h *Hub) broadcastAll(env Envelope) {
	h.registry.Each(func(cl *client) {
		if !cl.conn.Send(env) {
			metrics.DroppedSends.Inc()
		}
	})
}

// broadcastRoom delivers to every connection attached to room. Unknown rooms
// deliver to nobody.
func (h *Hub) broadcastRoom(room string, env Envelope) {
	for _, id := range h.rooms.Peers(room) {
		if cl, ok := h.registry.Get(id); ok {
			if !cl.conn.Send(env) {
				metrics.DroppedSends.Inc()
			}
		}
	}
}
