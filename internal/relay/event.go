package relay

import "encoding/json"

// Envelope is the wire frame for every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	EvOnline      = "online"
	EvSubscribe   = "subscribe"
	EvUnsubscribe = "unsubscribe"
	EvInRoom      = "in-room"
	EvOutRoom     = "out-room"
	EvStartTyping = "start-typing"
	EvStopTyping  = "stop-typing"
	EvStartCall   = "start-call"
	EvChatCall    = "chat-call"
	EvRejectCall  = "reject-call"
	EvInCall      = "in-call"
	EvStopCall    = "stop-call"
	EvJoin        = "join"
	EvLeave       = "leave"
	EvSignal      = "signal"
)

// Outbound-only event names.
const (
	EvUsers      = "users"
	EvUser       = "user"
	EvDisconnect = "disconnect"
	EvPeers      = "peers"
	EvError      = "error"
)

// Error codes carried by the "error" event. Replies go to the offending
// connection only, never into a broadcast.
const (
	CodeBadPayload = "bad_payload"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// usersPayload carries the full roster after a connect.
type usersPayload struct {
	Users []RosterEntry `json:"users"`
}

// userPayload doubles as the tagged roster broadcast (User set, Event
// online/offline) and the room join/leave notice (Room set, Event
// join/leave). The overloading is part of the wire contract.
type userPayload struct {
	User  []RosterEntry `json:"user,omitempty"`
	Room  string        `json:"room,omitempty"`
	Event string        `json:"event"`
}

// presencePayload: the Room field holds the user-id list, not the room name.
// Odd, but clients depend on it.
type presencePayload struct {
	Room   []string `json:"room"`
	UserID string   `json:"userId"`
}

type typingIn struct {
	Room string `json:"room"`
	Form string `json:"form"`
}

type typingOut struct {
	Room string `json:"room"`
	User string `json:"user"`
}

type presenceIn struct {
	Room   string `json:"room"`
	UserID string `json:"userId"`
}

// callIn extracts the routing key from a call event; the rest of the payload
// is relayed (or dropped) untouched.
type callIn struct {
	Room string `json:"room"`
}

type signalIn struct {
	ID     string          `json:"id"`
	Signal json.RawMessage `json:"signal"`
}

type signalOut struct {
	ID     string          `json:"id"`
	Signal json.RawMessage `json:"signal"`
}

// envelope builds an outbound frame. Payload types are all under our control,
// so marshal failures cannot happen in practice.
func envelope(event string, v any) Envelope {
	if v == nil {
		return Envelope{Event: event}
	}
	data, _ := json.Marshal(v)
	return Envelope{Event: event, Data: data}
}

func errEnvelope(msg string) Envelope {
	return envelope(EvError, errorPayload{Code: CodeBadPayload, Message: msg})
}
