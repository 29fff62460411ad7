package relay

import (
	"encoding/json"

	"signal-relay/pkg/metrics"
)

// Call-negotiation handlers. These are pure relays: the hub holds no call
// state, it only scopes delivery by room or forwards point-to-point.

// onCallRelay handles start-call and chat-call: the full payload is
// rebroadcast to the peer's room under the same event name.
func (h *Hub) onCallRelay(c Conn, event string, data json.RawMessage) {
	var in callIn
	if err := json.Unmarshal(data, &in); err != nil || in.Room == "" {
		c.Send(errEnvelope(event + ": room required"))
		return
	}
	h.broadcastRoom(in.Room, Envelope{Event: event, Data: data})
}

// onCallNotice handles reject-call, in-call, and stop-call: only the event
// name is rebroadcast. Dropping the payload is part of the protocol —
// recipients derive context from room state they already hold.
func (h *Hub) onCallNotice(c Conn, event string, data json.RawMessage) {
	var in callIn
	if err := json.Unmarshal(data, &in); err != nil || in.Room == "" {
		c.Send(errEnvelope(event + ": room required"))
		return
	}
	h.broadcastRoom(in.Room, Envelope{Event: event})
}

// onJoin replies with the room's current peer list to the caller only, then
// attaches the caller. The read+subscribe coupling is intentional: asking
// "who is here" makes you a member.
func (h *Hub) onJoin(c Conn, data json.RawMessage) {
	room, ok := h.roomArg(c, data, "join")
	if !ok {
		return
	}
	c.Send(envelope(EvPeers, h.rooms.Peers(room)))
	h.attach(c, room)
}

// onLeave detaches the caller from the room. Detach-only: the connection
// itself stays up and registered.
func (h *Hub) onLeave(c Conn, data json.RawMessage) {
	room, ok := h.roomArg(c, data, "leave")
	if !ok {
		return
	}
	h.detach(c, room)
}

// onSignal forwards an opaque negotiation payload to one specific connection,
// tagged with the sender's id. A gone target is a silent drop; the sender
// gets no acknowledgment either way.
func (h *Hub) onSignal(c Conn, data json.RawMessage) {
	var in signalIn
	if err := json.Unmarshal(data, &in); err != nil || in.ID == "" {
		c.Send(errEnvelope("signal: id required"))
		return
	}
	target, ok := h.registry.Get(in.ID)
	if !ok {
		h.log.Debug("hub.signal.drop", "from", c.ID(), "to", in.ID)
		return
	}
	target.conn.Send(envelope(EvSignal, signalOut{ID: c.ID(), Signal: in.Signal}))
	metrics.SignalsRelayed.Inc()
}
