package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster(t *testing.T, identities map[*fakeHandle]string, order ...*fakeHandle) (*Registry, *Broadcaster) {
	t.Helper()

	r := NewRegistry()
	for _, h := range order {
		require.Nil(t, r.Insert(h, identities[h]))
	}
	return r, NewBroadcaster(r)
}

func TestBroadcaster_FanOutIncludesEveryConnection(t *testing.T) {
	h1, h2, h3 := newFakeHandle("h1"), newFakeHandle("h2"), newFakeHandle("h3")
	_, b := newTestBroadcaster(t, map[*fakeHandle]string{h1: "alice", h2: "bob", h3: "alice"}, h1, h2, h3)

	b.Broadcast(NewChatEvent("alice", "hi", time.Unix(0, 0)))

	for _, h := range []*fakeHandle{h1, h2, h3} {
		frames := h.received(t)
		require.Len(t, frames, 1, h.ID())
		assert.Equal(t, "chat", frames[0]["type"])
		assert.Equal(t, "alice", frames[0]["username"])
		assert.Equal(t, "hi", frames[0]["message"])
	}
}

func TestBroadcaster_SendFailureIsIsolated(t *testing.T) {
	h1, h2, h3 := newFakeHandle("h1"), newFakeHandle("h2"), newFakeHandle("h3")
	r, b := newTestBroadcaster(t, map[*fakeHandle]string{h1: "alice", h2: "bob", h3: "carol"}, h1, h2, h3)

	h2.setFailSends(true)
	b.Broadcast(NewChatEvent("alice", "hi", time.Unix(0, 0)))

	_, ok := r.Identity(h2)
	assert.False(t, ok, "failed handle is removed")

	closed, code := h2.closed()
	assert.True(t, closed)
	assert.Equal(t, CloseSendFailed, code)

	for _, h := range []*fakeHandle{h1, h3} {
		frames := h.received(t)
		require.Len(t, frames, 2, h.ID())
		assert.Equal(t, "chat", frames[0]["type"])
		assert.Equal(t, []string{"alice", "carol"}, presenceUsers(t, frames[1]))
	}
}

func TestBroadcaster_BatchesFailuresIntoOnePresence(t *testing.T) {
	h1, h2, h3 := newFakeHandle("h1"), newFakeHandle("h2"), newFakeHandle("h3")
	r, b := newTestBroadcaster(t, map[*fakeHandle]string{h1: "alice", h2: "bob", h3: "carol"}, h1, h2, h3)

	h2.setFailSends(true)
	h3.setFailSends(true)
	b.Broadcast(NewChatEvent("alice", "hi", time.Unix(0, 0)))

	assert.Equal(t, 1, r.Len())

	frames := h1.received(t)
	require.Len(t, frames, 2, "one chat event and a single presence snapshot")
	assert.Equal(t, []string{"alice"}, presenceUsers(t, frames[1]))
}

func TestBroadcaster_PublishPresence(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)

	// nothing registered, nothing to deliver
	b.PublishPresence()

	h1 := newFakeHandle("h1")
	require.Nil(t, r.Insert(h1, "alice"))
	b.PublishPresence()

	assert.JSONEq(t, `{"type":"users","users":["alice"]}`, h1.lastRaw())
}

func TestBroadcaster_StaleHandleDoesNotRepublish(t *testing.T) {
	h1, h2 := newFakeHandle("h1"), newFakeHandle("h2")
	r, b := newTestBroadcaster(t, map[*fakeHandle]string{h1: "alice", h2: "bob"}, h1, h2)

	// h2 was already removed by its own disconnect path but still fails on send
	r.Remove(h2)
	h2.setFailSends(true)

	b.dropFailed([]Handle{h2})

	assert.Equal(t, 0, h1.frameCount(), "no presence change, no broadcast")
}
