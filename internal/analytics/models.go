package analytics

import (
	"time"

	"partylobby/internal/events"
)

type Summary struct {
	Since           time.Time
	Counts          map[events.Kind]int
	DistinctPlayers int
	BusiestRooms    []RoomActivity
}

type RoomActivity struct {
	RoomCode     string
	Joins        int
	GamesStarted int
	LastEventAt  time.Time
}

// Total is the number of events of every kind in the window.
func (s Summary) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}
