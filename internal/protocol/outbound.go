package protocol

import (
	"encoding/json"

	"partylobby/internal/rooms"
)

const (
	TypePlayersUpdate = "players-update"
	TypeGameStart     = "game-start"
	TypeError         = "error"
)

// Fixed error messages sent to clients.
const (
	MsgInvalidJSON  = "Invalid JSON"
	MsgRoomNotFound = "Room does not exist"
	MsgRoomExists   = "Room already exists"
)

type PlayerEntry struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type PlayersUpdate struct {
	Type     string        `json:"type"`
	RoomCode string        `json:"roomCode"`
	Players  []PlayerEntry `json:"players"`
	Host     string        `json:"host"`
}

type GameStart struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewPlayersUpdate(snap rooms.Snapshot) PlayersUpdate {
	entries := make([]PlayerEntry, 0, len(snap.Players))
	for _, m := range snap.Players {
		entries = append(entries, PlayerEntry{Name: m.Name, Role: string(m.Role)})
	}
	return PlayersUpdate{
		Type:     TypePlayersUpdate,
		RoomCode: snap.Code,
		Players:  entries,
		Host:     snap.Host,
	}
}

func NewGameStart(code string) GameStart {
	return GameStart{Type: TypeGameStart, RoomCode: code}
}

func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}

// MissingFieldMessage is the client-facing text for a MissingFieldError.
func MissingFieldMessage(err *MissingFieldError) string {
	return "Missing required field: " + err.Field
}

func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
