package rooms

import (
	"partylobby/internal/players"
	"time"
)

// Room is owned by the Store; callers only ever see Snapshots.
type Room struct {
	Code      string
	CreatedAt time.Time
	players   []players.Player
}

// Member is a player as it appears in a roster snapshot.
type Member struct {
	Name string
	Role players.Role
}

// Snapshot is an immutable copy of a room's roster in join order.
// Host is empty when the room has no players.
type Snapshot struct {
	Code    string
	Players []Member
	Host    string
}

// Departure describes the outcome of RecordDisconnect.
type Departure struct {
	Snapshot Snapshot
	Removed  bool
	NewHost  string // set only when the host role moved to someone else
}

func (r *Room) indexOf(name string) int {
	for i, p := range r.players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// add appends name unless present. The first player of an empty room is host.
func (r *Room) add(name string, at time.Time) bool {
	if r.indexOf(name) >= 0 {
		return false
	}
	role := players.RolePlayer
	if len(r.players) == 0 {
		role = players.RoleHost
	}
	r.players = append(r.players, players.Player{Name: name, Role: role, JoinedAt: at})
	return true
}

// remove drops name from the roster and hands the host role to the earliest
// remaining joiner if needed. It returns the new host's name, if any.
func (r *Room) remove(name string) (removed bool, newHost string) {
	i := r.indexOf(name)
	if i < 0 {
		return false, ""
	}
	wasHost := r.players[i].IsHost()
	r.players = append(r.players[:i], r.players[i+1:]...)

	if wasHost {
		if next := players.ElectHost(r.players); next >= 0 {
			r.players[next].Role = players.RoleHost
			newHost = r.players[next].Name
		}
	}
	return true, newHost
}

func (r *Room) snapshot() Snapshot {
	snap := Snapshot{
		Code:    r.Code,
		Players: make([]Member, 0, len(r.players)),
	}
	for _, p := range r.players {
		snap.Players = append(snap.Players, Member{Name: p.Name, Role: p.Role})
		if p.IsHost() {
			snap.Host = p.Name
		}
	}
	return snap
}
