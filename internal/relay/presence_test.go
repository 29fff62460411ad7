package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresence_EnterIdempotent(t *testing.T) {
	p := NewPresence()

	assert.True(t, p.Enter("lobby", "u1"))
	assert.False(t, p.Enter("lobby", "u1"), "duplicate enter")
	assert.Len(t, p.List("lobby"), 1)
}

func TestPresence_LeaveRemovesAll(t *testing.T) {
	p := NewPresence()
	p.Enter("lobby", "u1")
	p.Enter("lobby", "u1")
	p.Enter("lobby", "u2")

	assert.True(t, p.Leave("lobby", "u1"))
	assert.False(t, p.Leave("lobby", "u1"))
	assert.Equal(t, []string{"u2"}, p.List("lobby"))
}

func TestPresence_PartitionedPerRoom(t *testing.T) {
	p := NewPresence()
	p.Enter("lobby", "u1")
	p.Enter("den", "u1")
	p.Enter("den", "u2")

	assert.Equal(t, []string{"u1"}, p.List("lobby"))
	assert.Equal(t, []string{"u1", "u2"}, p.List("den"))

	p.Leave("lobby", "u1")
	assert.Empty(t, p.List("lobby"))
	assert.Equal(t, []string{"u1", "u2"}, p.List("den"), "other room untouched")
}

func TestPresence_UnknownRoom(t *testing.T) {
	p := NewPresence()
	assert.Empty(t, p.List("nowhere"))
	assert.False(t, p.Leave("nowhere", "u1"))
}
