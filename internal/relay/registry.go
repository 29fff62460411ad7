package relay

import "sort"

// Conn is what the registry needs from a transport connection. The websocket
// adapter implements it; tests use in-memory fakes.
type Conn interface {
	ID() string
	Send(Envelope) bool
}

// RosterEntry is one connection's slot in the broadcast roster.
type RosterEntry struct {
	ID        string `json:"id"`
	Address   string `json:"address,omitempty"`
	Initiator bool   `json:"initiator,omitempty"`
	UserID    string `json:"id_user,omitempty"`
}

type client struct {
	conn       Conn
	remoteAddr string
	initiator  bool
	userID     string
	rooms      map[string]struct{} // rooms this connection is attached to
}

// Registry tracks every live connection. Mutated only from the hub worker
// goroutine, so it carries no lock of its own.
type Registry struct {
	clients map[string]*client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*client)}
}

// Add inserts a connection. Returns false if the id is already registered;
// the existing entry is left untouched.
func (r *Registry) Add(c Conn, remoteAddr string, initiator bool) bool {
	if _, exists := r.clients[c.ID()]; exists {
		return false
	}
	r.clients[c.ID()] = &client{
		conn:       c,
		remoteAddr: remoteAddr,
		initiator:  initiator,
		rooms:      make(map[string]struct{}),
	}
	return true
}

// Remove deletes and returns the entry for id. Removing an unknown id is a
// safe no-op.
func (r *Registry) Remove(id string) (*client, bool) {
	cl, ok := r.clients[id]
	if ok {
		delete(r.clients, id)
	}
	return cl, ok
}

func (r *Registry) Get(id string) (*client, bool) {
	cl, ok := r.clients[id]
	return cl, ok
}

// SetUser attaches a user identity to a connection.
func (r *Registry) SetUser(id, userID string) bool {
	cl, ok := r.clients[id]
	if !ok {
		return false
	}
	cl.userID = userID
	return true
}

func (r *Registry) Len() int { return len(r.clients) }

// Roster snapshots all connections, sorted by id for stable output.
func (r *Registry) Roster() []RosterEntry {
	out := make([]RosterEntry, 0, len(r.clients))
	for id, cl := range r.clients {
		out = append(out, RosterEntry{
			ID:        id,
			Address:   cl.remoteAddr,
			Initiator: cl.initiator,
			UserID:    cl.userID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Each visits every registered connection.
func (r *Registry) Each(fn func(*client)) {
	for _, cl := range r.clients {
		fn(cl)
	}
}
