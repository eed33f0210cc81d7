package hub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/streamerquiz/matchserver/internal/hub"
)

// fakeConn records enqueued frames.
type fakeConn struct {
	handle string
	frames [][]byte
	full   bool
}

func (f *fakeConn) Handle() string { return f.handle }

func (f *fakeConn) Enqueue(frame []byte) bool {
	if f.full {
		return false
	}
	f.frames = append(f.frames, frame)
	return true
}

func TestHub_Send_DeliversToExactlyOneConnection(t *testing.T) {
	h := hub.New(zaptest.NewLogger(t))
	a := &fakeConn{handle: "conn-a"}
	b := &fakeConn{handle: "conn-b"}
	h.Register(a)
	h.Register(b)

	ok := h.Send("conn-b", []byte("hello"))

	assert.True(t, ok)
	assert.Empty(t, a.frames)
	assert.Len(t, b.frames, 1)
}

// TestHub_Send_UnknownHandleDropsSilently pins at-most-once semantics: a
// frame for a disconnected handle is dropped without error and nobody else
// receives it.
func TestHub_Send_UnknownHandleDropsSilently(t *testing.T) {
	h := hub.New(zaptest.NewLogger(t))
	a := &fakeConn{handle: "conn-a"}
	h.Register(a)

	ok := h.Send("conn-gone", []byte("hello"))

	assert.False(t, ok)
	assert.Empty(t, a.frames)
}

func TestHub_Broadcast_ReachesOnlySubscribers(t *testing.T) {
	h := hub.New(zaptest.NewLogger(t))
	a := &fakeConn{handle: "conn-a"}
	b := &fakeConn{handle: "conn-b"}
	c := &fakeConn{handle: "conn-c"}
	h.Register(a)
	h.Register(b)
	h.Register(c)
	h.Subscribe("ABCDEF", "conn-a")
	h.Subscribe("ABCDEF", "conn-b")

	h.Broadcast("ABCDEF", []byte("update"))

	assert.Len(t, a.frames, 1)
	assert.Len(t, b.frames, 1)
	assert.Empty(t, c.frames, "non-subscribers must not receive broadcasts")
}

func TestHub_Subscribe_UnregisteredHandleIgnored(t *testing.T) {
	h := hub.New(zaptest.NewLogger(t))
	h.Subscribe("ABCDEF", "conn-ghost")

	h.Broadcast("ABCDEF", []byte("update"))
	// Nothing to assert beyond not panicking; the ghost was never registered.
	assert.Equal(t, 0, h.ConnectionCount())
}

func TestHub_Unregister_RemovesAllSubscriptions(t *testing.T) {
	h := hub.New(zaptest.NewLogger(t))
	a := &fakeConn{handle: "conn-a"}
	h.Register(a)
	h.Subscribe("ABCDEF", "conn-a")
	h.Subscribe("GGGGGG", "conn-a")

	h.Unregister("conn-a")

	h.Broadcast("ABCDEF", []byte("update"))
	h.Broadcast("GGGGGG", []byte("update"))
	assert.Empty(t, a.frames)
	assert.False(t, h.Send("conn-a", []byte("direct")))
}

func TestHub_DropRoom_KeepsConnectionsRegistered(t *testing.T) {
	h := hub.New(zaptest.NewLogger(t))
	a := &fakeConn{handle: "conn-a"}
	h.Register(a)
	h.Subscribe("ABCDEF", "conn-a")

	h.DropRoom("ABCDEF")

	h.Broadcast("ABCDEF", []byte("update"))
	assert.Empty(t, a.frames)
	assert.True(t, h.Send("conn-a", []byte("direct")), "connection must survive room teardown")
}

func TestHub_Broadcast_SkipsFullConnections(t *testing.T) {
	h := hub.New(zaptest.NewLogger(t))
	a := &fakeConn{handle: "conn-a", full: true}
	b := &fakeConn{handle: "conn-b"}
	h.Register(a)
	h.Register(b)
	h.Subscribe("ABCDEF", "conn-a")
	h.Subscribe("ABCDEF", "conn-b")

	h.Broadcast("ABCDEF", []byte("update"))

	assert.Empty(t, a.frames)
	assert.Len(t, b.frames, 1, "one slow consumer must not block the room")
}
