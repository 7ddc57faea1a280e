package protocol

import (
	"errors"
	"testing"

	"partylobby/internal/players"
	"partylobby/internal/rooms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Commands(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Command
	}{
		{
			name: "create room",
			raw:  `{"type":"createRoom","name":"Alice","roomCode":"ABCD"}`,
			want: CreateRoom{Name: "Alice", RoomCode: "ABCD"},
		},
		{
			name: "join room normalises code and trims name",
			raw:  `{"type":"joinRoom","name":"  Bob ","roomCode":" abcd"}`,
			want: JoinRoom{Name: "Bob", RoomCode: "ABCD"},
		},
		{
			name: "start game ignores name",
			raw:  `{"type":"startGame","roomCode":"ABCD","name":"x"}`,
			want: StartGame{RoomCode: "ABCD"},
		},
		{
			name: "extra fields are ignored",
			raw:  `{"type":"joinRoom","name":"Bob","roomCode":"ABCD","color":"red"}`,
			want: JoinRoom{Name: "Bob", RoomCode: "ABCD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	for _, raw := range []string{"not json", "", "{", `42`, `{"type":"joinRoom","name":7}`} {
		_, err := Decode([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalidJSON, "input %q", raw)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	for _, raw := range []string{`{"type":"leaveRoom"}`, `{}`, `null`} {
		_, err := Decode([]byte(raw))
		var unknown *UnknownTypeError
		require.True(t, errors.As(err, &unknown), "input %q: %v", raw, err)
	}
}

func TestDecode_MissingFields(t *testing.T) {
	tests := []struct {
		raw   string
		field string
	}{
		{`{"type":"createRoom","roomCode":"ABCD"}`, "name"},
		{`{"type":"createRoom","name":"   ","roomCode":"ABCD"}`, "name"},
		{`{"type":"joinRoom","name":"Bob"}`, "roomCode"},
		{`{"type":"startGame"}`, "roomCode"},
	}

	for _, tt := range tests {
		_, err := Decode([]byte(tt.raw))
		var missing *MissingFieldError
		require.True(t, errors.As(err, &missing), "input %q", tt.raw)
		assert.Equal(t, tt.field, missing.Field)
		assert.Equal(t, "Missing required field: "+tt.field, MissingFieldMessage(missing))
	}
}

func TestEncode_PlayersUpdate(t *testing.T) {
	snap := rooms.Snapshot{
		Code: "ABCD",
		Players: []rooms.Member{
			{Name: "Alice", Role: players.RoleHost},
			{Name: "Bob", Role: players.RolePlayer},
		},
		Host: "Alice",
	}

	data, err := Encode(NewPlayersUpdate(snap))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "players-update",
		"roomCode": "ABCD",
		"players": [{"name":"Alice","role":"host"},{"name":"Bob","role":"player"}],
		"host": "Alice"
	}`, string(data))
}

func TestEncode_EmptyRosterIsArray(t *testing.T) {
	data, err := Encode(NewPlayersUpdate(rooms.Snapshot{Code: "ABCD"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"players-update","roomCode":"ABCD","players":[],"host":""}`, string(data))
}

func TestEncode_GameStartAndError(t *testing.T) {
	data, err := Encode(NewGameStart("ABCD"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"game-start","roomCode":"ABCD"}`, string(data))

	data, err = Encode(NewError(MsgInvalidJSON))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","message":"Invalid JSON"}`, string(data))
}
