package events

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	RoomCreated  = Kind("room_created")
	PlayerJoined = Kind("player_joined")
	PlayerLeft   = Kind("player_left")
	HostChanged  = Kind("host_changed")
	GameStarted  = Kind("game_started")
)

type Event struct {
	ID         uuid.UUID
	Kind       Kind
	RoomCode   string
	PlayerName string
	ConnID     string
	At         time.Time
}

type Bus struct {
	Lobby chan Event
}

func NewBus(size int) *Bus {
	return &Bus{
		Lobby: make(chan Event, size),
	}
}

// Publish stamps ev with an ID and time if unset and queues it without
// blocking. It reports false when the buffer is full or the bus is nil.
func (b *Bus) Publish(ev Event) bool {
	if b == nil {
		return false
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case b.Lobby <- ev:
		return true
	default:
		return false
	}
}
