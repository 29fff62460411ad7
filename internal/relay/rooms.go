package relay

import "sort"

// Rooms maps room names to member connection ids. Rooms are created on first
// attach and dropped when the last member detaches.
type Rooms struct {
	members map[string]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{members: make(map[string]map[string]struct{})}
}

// Attach adds id to room, creating the room if needed. Returns false if id
// was already a member.
func (r *Rooms) Attach(room, id string) bool {
	set, ok := r.members[room]
	if !ok {
		set = make(map[string]struct{})
		r.members[room] = set
	}
	if _, in := set[id]; in {
		return false
	}
	set[id] = struct{}{}
	return true
}

// Detach removes id from room. Only the caller's membership is touched; the
// room itself is deleted once empty.
func (r *Rooms) Detach(room, id string) bool {
	set, ok := r.members[room]
	if !ok {
		return false
	}
	if _, in := set[id]; !in {
		return false
	}
	delete(set, id)
	if len(set) == 0 {
		delete(r.members, room)
	}
	return true
}

// Peers returns the member ids of room, sorted. Unknown rooms yield an empty
// slice.
func (r *Rooms) Peers(room string) []string {
	set := r.members[room]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Rooms) Len() int { return len(r.members) }
