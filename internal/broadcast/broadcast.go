package broadcast

import (
	"partylobby/internal/metrics"
	"partylobby/internal/protocol"
	"partylobby/internal/registry"
	"partylobby/internal/rooms"

	"github.com/sirupsen/logrus"
)

type Snapshotter interface {
	Snapshot(code string) (rooms.Snapshot, bool)
}

type Scope interface {
	MembersOf(code string) []registry.ConnID
}

type Deliverer interface {
	Deliver(id registry.ConnID, data []byte) bool
}

// Broadcaster sends envelopes to the connections the registry currently
// attributes to a room. Recipients that cannot take a frame are skipped.
type Broadcaster struct {
	rooms   Snapshotter
	scope   Scope
	out     Deliverer
	metrics *metrics.Metrics
	log     *logrus.Entry
}

func NewBroadcaster(rooms Snapshotter, scope Scope, out Deliverer, m *metrics.Metrics, log *logrus.Entry) *Broadcaster {
	return &Broadcaster{
		rooms:   rooms,
		scope:   scope,
		out:     out,
		metrics: m,
		log:     log.WithField("component", "broadcast"),
	}
}

// BroadcastRoom sends the room's current roster to its members and returns
// how many accepted it.
func (b *Broadcaster) BroadcastRoom(code string) int {
	snap, ok := b.rooms.Snapshot(code)
	if !ok {
		return 0
	}
	return b.fanOut(code, protocol.NewPlayersUpdate(snap))
}

// BroadcastGameStart sends a one-shot game-start signal to the room's members.
func (b *Broadcaster) BroadcastGameStart(code string) int {
	return b.fanOut(code, protocol.NewGameStart(code))
}

// SendError answers a single connection.
func (b *Broadcaster) SendError(id registry.ConnID, message string) bool {
	data, err := protocol.Encode(protocol.NewError(message))
	if err != nil {
		b.log.WithError(err).Error("marshal error envelope")
		return false
	}
	ok := b.out.Deliver(id, data)
	b.metrics.Delivered(ok)
	return ok
}

func (b *Broadcaster) fanOut(code string, envelope any) int {
	data, err := protocol.Encode(envelope)
	if err != nil {
		b.log.WithError(err).WithField("room", code).Error("marshal envelope")
		return 0
	}

	sent := 0
	for _, id := range b.scope.MembersOf(code) {
		ok := b.out.Deliver(id, data)
		b.metrics.Delivered(ok)
		if !ok {
			b.log.WithFields(logrus.Fields{"room": code, "conn": id}).Debug("recipient skipped")
			continue
		}
		sent++
	}
	return sent
}
