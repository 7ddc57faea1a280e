package analytics

import (
	"fmt"
	"time"

	"partylobby/internal/db"
	"partylobby/internal/events"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

// GetSummary aggregates the lobby event log from since onwards.
func (q *Queries) GetSummary(since time.Time, limit int) (*Summary, error) {
	s := &Summary{
		Since:  since,
		Counts: make(map[events.Kind]int),
	}

	rows, err := q.DB.Query(`
		SELECT kind, COUNT(*)
		FROM lobby_events
		WHERE occurred_at >= $1
		GROUP BY kind
	`, since)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scanning event count: %w", err)
		}
		s.Counts[events.Kind(kind)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}

	err = q.DB.QueryRow(`
		SELECT COUNT(DISTINCT player_name)
		FROM lobby_events
		WHERE occurred_at >= $1 AND player_name <> ''
	`, since).Scan(&s.DistinctPlayers)
	if err != nil {
		return nil, fmt.Errorf("counting players: %w", err)
	}

	s.BusiestRooms, err = q.GetBusiestRooms(since, limit)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetBusiestRooms ranks rooms by joins, then games started.
func (q *Queries) GetBusiestRooms(since time.Time, limit int) ([]RoomActivity, error) {
	rows, err := q.DB.Query(`
		SELECT
			room_code,
			COUNT(*) FILTER (WHERE kind IN ('room_created', 'player_joined')) AS joins,
			COUNT(*) FILTER (WHERE kind = 'game_started') AS games,
			MAX(occurred_at) AS last_event
		FROM lobby_events
		WHERE occurred_at >= $1
		GROUP BY room_code
		ORDER BY joins DESC, games DESC, room_code
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("getting busiest rooms: %w", err)
	}
	defer rows.Close()

	var out []RoomActivity
	for rows.Next() {
		var r RoomActivity
		if err := rows.Scan(&r.RoomCode, &r.Joins, &r.GamesStarted, &r.LastEventAt); err != nil {
			return nil, fmt.Errorf("scanning room activity: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
