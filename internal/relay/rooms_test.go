package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRooms_AttachDetach(t *testing.T) {
	r := NewRooms()

	assert.True(t, r.Attach("lobby", "a"))
	assert.False(t, r.Attach("lobby", "a"), "re-attach is a no-op")
	assert.True(t, r.Attach("lobby", "b"))

	assert.Equal(t, []string{"a", "b"}, r.Peers("lobby"))

	assert.True(t, r.Detach("lobby", "a"))
	assert.False(t, r.Detach("lobby", "a"))
	assert.Equal(t, []string{"b"}, r.Peers("lobby"))
}

func TestRooms_UnknownRoom(t *testing.T) {
	r := NewRooms()
	assert.Empty(t, r.Peers("nowhere"))
	assert.False(t, r.Detach("nowhere", "a"))
	assert.Zero(t, r.Len())
}

func TestRooms_EmptyRoomIsDropped(t *testing.T) {
	r := NewRooms()
	r.Attach("lobby", "a")
	require.Equal(t, 1, r.Len())

	r.Detach("lobby", "a")
	assert.Zero(t, r.Len())
}

func TestRooms_DetachTouchesOnlyCaller(t *testing.T) {
	r := NewRooms()
	r.Attach("lobby", "a")
	r.Attach("lobby", "b")
	r.Attach("other", "a")

	r.Detach("lobby", "a")

	assert.Equal(t, []string{"b"}, r.Peers("lobby"))
	assert.Equal(t, []string{"a"}, r.Peers("other"))
}

func TestRooms_ReattachRoundTrip(t *testing.T) {
	r := NewRooms()
	r.Attach("lobby", "a")
	r.Detach("lobby", "a")
	r.Attach("lobby", "a")

	assert.Equal(t, []string{"a"}, r.Peers("lobby"))
}
