package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClient() *client {
	return &client{send: make(chan []byte, 16)}
}

func TestEnqueueAfterCloseIsDropped(t *testing.T) {
	c := newTestClient()
	c.enqueue([]byte("hello"))
	assert.Len(t, c.send, 1)

	c.close()
	c.enqueue([]byte("late")) // must not panic or block

	_, ok := <-c.send
	assert.True(t, ok, "frame queued before close should survive")
	_, ok = <-c.send
	assert.False(t, ok, "channel should be closed with nothing after")
}

func TestCloseIsIdempotent(t *testing.T) {
	c := newTestClient()
	c.close()
	c.close()
}

func TestJoinReusesRoom(t *testing.T) {
	h := NewHub()
	rm1 := h.join("alpha", newTestClient())
	rm2 := h.join("alpha", newTestClient())

	assert.Same(t, rm1, rm2)
	assert.Equal(t, 1, h.RoomCount())
}

func TestDropKeepsOccupiedRoom(t *testing.T) {
	h := NewHub()
	rm := h.join("alpha", newTestClient())

	h.drop(rm)
	assert.Equal(t, 1, h.RoomCount())
}

func TestStaleDropLeavesReplacementRoom(t *testing.T) {
	h := NewHub()
	c1 := newTestClient()
	old := h.join("alpha", c1)
	old.leave(c1)
	h.drop(old)
	assert.Equal(t, 0, h.RoomCount())

	fresh := h.join("alpha", newTestClient())
	assert.NotSame(t, old, fresh)

	// A drop computed against the removed room must not take the new
	// one down with it.
	h.drop(old)
	assert.Equal(t, 1, h.RoomCount())
}
