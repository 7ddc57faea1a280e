// Package lobby drives each connection through Connect, Handle and
// Disconnect. Every call runs under a single lock, so room mutations never
// interleave and each broadcast reflects the state it was computed from.
package lobby

import (
	"errors"
	"sync"

	"partylobby/internal/broadcast"
	"partylobby/internal/events"
	"partylobby/internal/metrics"
	"partylobby/internal/protocol"
	"partylobby/internal/registry"
	"partylobby/internal/rooms"

	"github.com/sirupsen/logrus"
)

type Router struct {
	mu        sync.Mutex
	rooms     *rooms.Store
	registry  *registry.Registry
	broadcast *broadcast.Broadcaster
	events    *events.Bus
	metrics   *metrics.Metrics
	log       *logrus.Entry
}

// NewRouter wires the router. bus and m may be nil.
func NewRouter(store *rooms.Store, reg *registry.Registry, b *broadcast.Broadcaster, bus *events.Bus, m *metrics.Metrics, log *logrus.Entry) *Router {
	return &Router{
		rooms:     store,
		registry:  reg,
		broadcast: b,
		events:    bus,
		metrics:   m,
		log:       log.WithField("component", "lobby"),
	}
}

func (r *Router) Connect(id registry.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics.ConnectionOpened()
	r.log.WithField("conn", id).Info("client connected")
}

// Handle processes one inbound frame from id.
func (r *Router) Handle(id registry.ConnID, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.log.WithField("conn", id)
	cmd, err := protocol.Decode(data)
	if err != nil {
		r.reject(id, err, log)
		return
	}
	r.metrics.MessageHandled(cmd.Type())

	switch c := cmd.(type) {
	case protocol.CreateRoom:
		r.createRoom(id, c, log)
	case protocol.JoinRoom:
		r.joinRoom(id, c, log)
	case protocol.StartGame:
		r.startGame(id, c, log)
	}
}

// Disconnect releases id's binding and removes its player from the room,
// unless another live connection still holds the same name there.
func (r *Router) Disconnect(id registry.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.metrics.ConnectionClosed()
	log := r.log.WithField("conn", id)

	b, ok := r.registry.Unbind(id)
	if !ok {
		log.Info("client disconnected")
		return
	}
	log = log.WithFields(logrus.Fields{"room": b.RoomCode, "player": b.PlayerName})

	if r.registry.Holders(b.RoomCode, b.PlayerName) > 0 {
		log.Info("client disconnected, player still connected elsewhere")
		return
	}

	dep := r.rooms.RecordDisconnect(b.RoomCode, b.PlayerName)
	if !dep.Removed {
		log.Info("client disconnected")
		return
	}

	r.publish(events.Event{Kind: events.PlayerLeft, RoomCode: b.RoomCode, PlayerName: b.PlayerName, ConnID: string(id)})
	if dep.NewHost != "" {
		r.publish(events.Event{Kind: events.HostChanged, RoomCode: b.RoomCode, PlayerName: dep.NewHost})
		log = log.WithField("host", dep.NewHost)
	}
	sent := r.broadcast.BroadcastRoom(b.RoomCode)
	log.WithField("recipients", sent).Info("player left room")
}

func (r *Router) createRoom(id registry.ConnID, c protocol.CreateRoom, log *logrus.Entry) {
	log = log.WithFields(logrus.Fields{"room": c.RoomCode, "player": c.Name})

	if _, err := r.rooms.Create(c.RoomCode, c.Name); err != nil {
		r.fail(id, err, log)
		return
	}
	r.registry.Bind(id, c.RoomCode, c.Name)
	r.metrics.SetRooms(r.rooms.Len())
	r.publish(events.Event{Kind: events.RoomCreated, RoomCode: c.RoomCode, PlayerName: c.Name, ConnID: string(id)})

	sent := r.broadcast.BroadcastRoom(c.RoomCode)
	log.WithField("recipients", sent).Info("room created")
}

func (r *Router) joinRoom(id registry.ConnID, c protocol.JoinRoom, log *logrus.Entry) {
	log = log.WithFields(logrus.Fields{"room": c.RoomCode, "player": c.Name})

	_, added, err := r.rooms.Join(c.RoomCode, c.Name)
	if err != nil {
		r.fail(id, err, log)
		return
	}
	r.registry.Bind(id, c.RoomCode, c.Name)
	if added {
		r.publish(events.Event{Kind: events.PlayerJoined, RoomCode: c.RoomCode, PlayerName: c.Name, ConnID: string(id)})
	}

	sent := r.broadcast.BroadcastRoom(c.RoomCode)
	log.WithFields(logrus.Fields{"recipients": sent, "rejoin": !added}).Info("player joined room")
}

func (r *Router) startGame(id registry.ConnID, c protocol.StartGame, log *logrus.Entry) {
	log = log.WithField("room", c.RoomCode)

	sent := r.broadcast.BroadcastGameStart(c.RoomCode)
	ev := events.Event{Kind: events.GameStarted, RoomCode: c.RoomCode, ConnID: string(id)}
	if b, ok := r.registry.Lookup(id); ok {
		ev.PlayerName = b.PlayerName
	}
	r.publish(ev)
	log.WithField("recipients", sent).Info("game started")
}

// reject answers a frame that could not be decoded into a command.
func (r *Router) reject(id registry.ConnID, err error, log *logrus.Entry) {
	var unknown *protocol.UnknownTypeError
	var missing *protocol.MissingFieldError

	switch {
	case errors.As(err, &unknown):
		r.metrics.MessageRejected("unknown_type")
		log.WithField("type", unknown.Type).Warn("unknown message type")
	case errors.As(err, &missing):
		r.metrics.MessageRejected("missing_field")
		log.WithField("type", missing.Type).Warn(err.Error())
		r.broadcast.SendError(id, protocol.MissingFieldMessage(missing))
	default:
		r.metrics.MessageRejected("invalid_json")
		log.WithError(err).Warn("error parsing message")
		r.broadcast.SendError(id, protocol.MsgInvalidJSON)
	}
}

// fail answers a command the room store refused.
func (r *Router) fail(id registry.ConnID, err error, log *logrus.Entry) {
	switch {
	case errors.Is(err, rooms.ErrRoomExists):
		r.metrics.MessageRejected("room_exists")
		r.broadcast.SendError(id, protocol.MsgRoomExists)
	case errors.Is(err, rooms.ErrRoomNotFound):
		r.metrics.MessageRejected("room_not_found")
		r.broadcast.SendError(id, protocol.MsgRoomNotFound)
	default:
		r.metrics.MessageRejected("internal")
		log.WithError(err).Error("room store failure")
		return
	}
	log.WithError(err).Info("request refused")
}

func (r *Router) publish(ev events.Event) {
	if r.events == nil {
		return
	}
	if !r.events.Publish(ev) {
		r.log.WithField("kind", ev.Kind).Warn("event buffer full, dropping event")
	}
}
