package relay

import "sort"

// Presence tracks which user ids are marked in-room, partitioned per room.
// Connection membership (Rooms) and presence are independent axes: a user is
// present only after an explicit in-room event.
type Presence struct {
	byRoom map[string]map[string]struct{}
}

func NewPresence() *Presence {
	return &Presence{byRoom: make(map[string]map[string]struct{})}
}

// Enter marks userID present in room. Duplicate enters are no-ops.
func (p *Presence) Enter(room, userID string) bool {
	set, ok := p.byRoom[room]
	if !ok {
		set = make(map[string]struct{})
		p.byRoom[room] = set
	}
	if _, in := set[userID]; in {
		return false
	}
	set[userID] = struct{}{}
	return true
}

// Leave clears userID from room. Returns false if the user was not present.
func (p *Presence) Leave(room, userID string) bool {
	set, ok := p.byRoom[room]
	if !ok {
		return false
	}
	if _, in := set[userID]; !in {
		return false
	}
	delete(set, userID)
	if len(set) == 0 {
		delete(p.byRoom, room)
	}
	return true
}

// List returns the user ids present in room, sorted.
func (p *Presence) List(room string) []string {
	set := p.byRoom[room]
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
