package players

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestElectHost(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	at := func(s int) time.Time { return base.Add(time.Duration(s) * time.Second) }

	tests := []struct {
		name       string
		candidates []Player
		want       int
	}{
		{
			name: "empty roster",
			want: -1,
		},
		{
			name:       "single candidate",
			candidates: []Player{{Name: "Bob", JoinedAt: at(2)}},
			want:       0,
		},
		{
			name: "earliest joiner wins",
			candidates: []Player{
				{Name: "Bob", JoinedAt: at(2)},
				{Name: "Carol", JoinedAt: at(3)},
			},
			want: 0,
		},
		{
			name: "order in slice does not matter",
			candidates: []Player{
				{Name: "Carol", JoinedAt: at(3)},
				{Name: "Dave", JoinedAt: at(5)},
				{Name: "Bob", JoinedAt: at(2)},
			},
			want: 2,
		},
		{
			name: "tie keeps first position",
			candidates: []Player{
				{Name: "Carol", JoinedAt: at(4)},
				{Name: "Bob", JoinedAt: at(2)},
				{Name: "Erin", JoinedAt: at(2)},
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ElectHost(tt.candidates))
		})
	}
}

func TestElectHost_DoesNotMutate(t *testing.T) {
	now := time.Now()
	candidates := []Player{
		{Name: "Bob", Role: RolePlayer, JoinedAt: now.Add(time.Second)},
		{Name: "Carol", Role: RolePlayer, JoinedAt: now},
	}

	assert.Equal(t, 1, ElectHost(candidates))
	assert.Equal(t, RolePlayer, candidates[0].Role)
	assert.Equal(t, RolePlayer, candidates[1].Role)
}
