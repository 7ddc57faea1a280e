package broadcast

import (
	"encoding/json"
	"sync"
	"testing"

	"partylobby/internal/logging"
	"partylobby/internal/metrics"
	"partylobby/internal/protocol"
	"partylobby/internal/registry"
	"partylobby/internal/rooms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects deliveries per connection. IDs in closed refuse frames.
type recorder struct {
	mu     sync.Mutex
	frames map[registry.ConnID][][]byte
	closed map[registry.ConnID]bool
}

func newRecorder() *recorder {
	return &recorder{
		frames: make(map[registry.ConnID][][]byte),
		closed: make(map[registry.ConnID]bool),
	}
}

func (r *recorder) Deliver(id registry.ConnID, data []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed[id] {
		return false
	}
	r.frames[id] = append(r.frames[id], data)
	return true
}

func (r *recorder) received(id registry.ConnID) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[id]
}

func setup(t *testing.T) (*Broadcaster, *rooms.Store, *registry.Registry, *recorder) {
	t.Helper()
	store := rooms.NewStore()
	reg := registry.New()
	rec := newRecorder()
	b := NewBroadcaster(store, reg, rec, metrics.New(), logging.Discard().WithField("test", t.Name()))
	return b, store, reg, rec
}

func TestBroadcastRoom_ReachesOnlyBoundConnections(t *testing.T) {
	b, store, reg, rec := setup(t)
	store.Create("ABCD", "Alice")
	store.Join("ABCD", "Bob")
	store.Create("WXYZ", "Carol")
	reg.Bind("c-alice", "ABCD", "Alice")
	reg.Bind("c-bob", "ABCD", "Bob")
	reg.Bind("c-carol", "WXYZ", "Carol")

	sent := b.BroadcastRoom("ABCD")
	assert.Equal(t, 2, sent)

	for _, id := range []registry.ConnID{"c-alice", "c-bob"} {
		frames := rec.received(id)
		require.Len(t, frames, 1, id)
		assert.JSONEq(t, `{
			"type":"players-update","roomCode":"ABCD",
			"players":[{"name":"Alice","role":"host"},{"name":"Bob","role":"player"}],
			"host":"Alice"
		}`, string(frames[0]))
	}
	assert.Empty(t, rec.received("c-carol"))
}

func TestBroadcastRoom_OtherRoomDeliversNothing(t *testing.T) {
	b, store, reg, rec := setup(t)
	store.Create("XXXX", "Alice")
	store.Create("YYYY", "Bob")
	reg.Bind("c1", "XXXX", "Alice")

	assert.Equal(t, 0, b.BroadcastRoom("YYYY"))
	assert.Empty(t, rec.received("c1"))
}

func TestBroadcastRoom_MissingRoom(t *testing.T) {
	b, _, reg, rec := setup(t)
	reg.Bind("c1", "GONE", "Alice")

	assert.Equal(t, 0, b.BroadcastRoom("GONE"))
	assert.Empty(t, rec.received("c1"))
}

func TestBroadcastRoom_SkipsClosedRecipients(t *testing.T) {
	b, store, reg, rec := setup(t)
	store.Create("ABCD", "Alice")
	store.Join("ABCD", "Bob")
	store.Join("ABCD", "Carol")
	reg.Bind("c1", "ABCD", "Alice")
	reg.Bind("c2", "ABCD", "Bob")
	reg.Bind("c3", "ABCD", "Carol")
	rec.closed["c2"] = true

	assert.Equal(t, 2, b.BroadcastRoom("ABCD"))
	assert.Len(t, rec.received("c1"), 1)
	assert.Empty(t, rec.received("c2"))
	assert.Len(t, rec.received("c3"), 1)
}

func TestBroadcastGameStart(t *testing.T) {
	b, store, reg, rec := setup(t)
	store.Create("ABCD", "Alice")
	reg.Bind("c1", "ABCD", "Alice")
	reg.Bind("c2", "ABCD", "Bob")
	reg.Bind("c3", "WXYZ", "Carol")

	assert.Equal(t, 2, b.BroadcastGameStart("ABCD"))

	for _, id := range []registry.ConnID{"c1", "c2"} {
		frames := rec.received(id)
		require.Len(t, frames, 1)
		var got protocol.GameStart
		require.NoError(t, json.Unmarshal(frames[0], &got))
		assert.Equal(t, protocol.NewGameStart("ABCD"), got)
	}
	assert.Empty(t, rec.received("c3"))
}

func TestSendError(t *testing.T) {
	b, _, _, rec := setup(t)

	assert.True(t, b.SendError("c1", protocol.MsgRoomNotFound))
	frames := rec.received("c1")
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"type":"error","message":"Room does not exist"}`, string(frames[0]))

	rec.closed["c2"] = true
	assert.False(t, b.SendError("c2", protocol.MsgInvalidJSON))
}
