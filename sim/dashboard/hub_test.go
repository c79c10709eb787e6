package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framesim/framesim/sim"
	"github.com/framesim/framesim/sim/wire"
)

func TestHub_AddRemove(t *testing.T) {
	h := NewHub(4)
	a := h.Add()
	b := h.Add()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, h.Len())

	h.Remove(a.ID)
	h.Remove(a.ID) // idempotent
	assert.Equal(t, 1, h.Len())
	_, open := <-a.Messages()
	assert.False(t, open, "removed subscriber's queue is closed")
}

func TestHub_DeliverEncodesWireSnapshot(t *testing.T) {
	// GIVEN a subscriber and a coordinator publishing into the hub
	h := NewHub(8)
	sub := h.Add()
	c, err := sim.NewCoordinator(2, h)
	require.NoError(t, err)

	// WHEN a key is accessed
	require.NoError(t, c.OnAccess("A"))

	// THEN the subscriber receives the dashboard JSON for that access
	var got wire.Snapshot
	require.NoError(t, json.Unmarshal(<-sub.Messages(), &got))
	assert.Equal(t, "A", got.Page)
	assert.Equal(t, int64(1), got.Seq)
	assert.Equal(t, []string{"A"}, got.Clock.Frames)
}

func TestHub_SlowSubscriberIsDropped(t *testing.T) {
	// GIVEN a subscriber that never drains its single-slot queue
	h := NewHub(1)
	slow := h.Add()
	fast := h.Add()

	// WHEN two messages are broadcast while fast keeps up
	h.Broadcast([]byte("1"))
	assert.Equal(t, "1", string(<-fast.Messages()))
	h.Broadcast([]byte("2"))

	// THEN only the slow subscriber is removed, after receiving what fit
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, int64(1), h.Dropped())
	assert.Equal(t, "2", string(<-fast.Messages()))
	assert.Equal(t, "1", string(<-slow.Messages()))
	_, open := <-slow.Messages()
	assert.False(t, open)
}

func TestHub_LateSubscriberGetsLatest(t *testing.T) {
	h := NewHub(4)
	assert.Nil(t, h.Latest())
	h.Broadcast([]byte("old"))
	h.Broadcast([]byte("new"))

	sub := h.Add()

	assert.Equal(t, "new", string(<-sub.Messages()))
	assert.Empty(t, sub.Messages())
}

func TestHub_CloseRemovesEveryone(t *testing.T) {
	h := NewHub(0)
	subs := []*Subscriber{h.Add(), h.Add(), h.Add()}

	h.Close()

	assert.Zero(t, h.Len())
	for _, s := range subs {
		_, open := <-s.Messages()
		assert.False(t, open)
	}
	h.Broadcast([]byte("after close")) // no subscribers, no panic
}

func TestHub_AddAfterCloseReturnsClosedQueue(t *testing.T) {
	// GIVEN a hub that published a snapshot and was then closed
	h := NewHub(0)
	h.Broadcast([]byte("last"))
	h.Close()

	// WHEN a subscriber joins late
	s := h.Add()

	// THEN it is not registered and its queue is already closed
	assert.Zero(t, h.Len())
	_, open := <-s.Messages()
	assert.False(t, open)

	// AND removing it is a no-op
	h.Remove(s.ID)
	assert.Zero(t, h.Len())
}
