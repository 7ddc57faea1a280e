package rooms

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room does not exist")
)

type Option func(*Store)

// WithClock replaces time.Now as the source of join timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store holds every room for the life of the process. Rooms are never
// deleted, even once their roster is empty.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
	now   func() time.Time
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		rooms: make(map[string]*Room),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create allocates code with creator as its only member and host.
func (s *Store) Create(code, creator string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[code]; exists {
		return Snapshot{}, fmt.Errorf("creating %q: %w", code, ErrRoomExists)
	}

	now := s.now()
	room := &Room{Code: code, CreatedAt: now}
	room.add(creator, now)
	s.rooms[code] = room
	return room.snapshot(), nil
}

// Join appends name to the roster and reports whether it was added. Joining
// under a name that is already present leaves the roster untouched and still
// returns the snapshot.
func (s *Store) Join(code, name string) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return Snapshot{}, false, fmt.Errorf("joining %q: %w", code, ErrRoomNotFound)
	}
	added := room.add(name, s.now())
	return room.snapshot(), added, nil
}

// RecordDisconnect removes name from the room and elects a new host when the
// departing player held the role.
func (s *Store) RecordDisconnect(code, name string) Departure {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return Departure{}
	}
	removed, newHost := room.remove(name)
	return Departure{
		Snapshot: room.snapshot(),
		Removed:  removed,
		NewHost:  newHost,
	}
}

func (s *Store) Snapshot(code string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		return Snapshot{}, false
	}
	return room.snapshot(), true
}

// List returns a snapshot of every room ordered by code.
func (s *Store) List() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Snapshot, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r.snapshot())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// SuggestCode returns a generated code that is not currently allocated. The
// code is not reserved; a racing createRoom may still claim it first.
func (s *Store) SuggestCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Try up to 10 times to generate a unique code
	for range 10 {
		code, err := GenerateCode()
		if err != nil {
			return "", fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := s.rooms[code]; exists {
			continue
		}
		return code, nil
	}
	return "", fmt.Errorf("failed to generate unique room code after 10 attempts")
}
