// Package protocol defines the JSON envelopes exchanged over /ws.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"partylobby/internal/rooms"
)

const (
	TypeCreateRoom = "createRoom"
	TypeJoinRoom   = "joinRoom"
	TypeStartGame  = "startGame"
)

var ErrInvalidJSON = errors.New("invalid json")

type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Type)
}

type MissingFieldError struct {
	Type  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Type, e.Field)
}

// Command is one of CreateRoom, JoinRoom or StartGame.
type Command interface {
	Type() string
	command()
}

type CreateRoom struct {
	Name     string
	RoomCode string
}

type JoinRoom struct {
	Name     string
	RoomCode string
}

type StartGame struct {
	RoomCode string
}

func (CreateRoom) Type() string { return TypeCreateRoom }
func (JoinRoom) Type() string   { return TypeJoinRoom }
func (StartGame) Type() string  { return TypeStartGame }

func (CreateRoom) command() {}
func (JoinRoom) command()   {}
func (StartGame) command()  {}

type inbound struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	RoomCode string `json:"roomCode"`
}

// Decode parses a single inbound frame. Room codes are normalised and names
// trimmed before the required-field check.
func Decode(data []byte) (Command, error) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	name := strings.TrimSpace(in.Name)
	code := rooms.NormalizeCode(in.RoomCode)

	switch in.Type {
	case TypeCreateRoom, TypeJoinRoom:
		if name == "" {
			return nil, &MissingFieldError{Type: in.Type, Field: "name"}
		}
		if code == "" {
			return nil, &MissingFieldError{Type: in.Type, Field: "roomCode"}
		}
		if in.Type == TypeCreateRoom {
			return CreateRoom{Name: name, RoomCode: code}, nil
		}
		return JoinRoom{Name: name, RoomCode: code}, nil
	case TypeStartGame:
		if code == "" {
			return nil, &MissingFieldError{Type: in.Type, Field: "roomCode"}
		}
		return StartGame{RoomCode: code}, nil
	default:
		return nil, &UnknownTypeError{Type: in.Type}
	}
}
