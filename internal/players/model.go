package players

import "time"

type Role string

const (
	RoleHost   = Role("host")
	RolePlayer = Role("player")
)

type Player struct {
	Name     string
	Role     Role
	JoinedAt time.Time // only used to order host succession
}

func (p Player) IsHost() bool {
	return p.Role == RoleHost
}
