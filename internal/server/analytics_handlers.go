package server

import (
	"net/http"
	"strconv"
	"time"

	"partylobby/internal/analytics"
	"partylobby/internal/events"
)

const defaultStatsHours = 24

type statsResponse struct {
	Since           time.Time        `json:"since"`
	Total           int              `json:"total"`
	Counts          map[string]int   `json:"counts"`
	DistinctPlayers int              `json:"distinctPlayers"`
	BusiestRooms    []roomActivityJS `json:"busiestRooms"`
}

type roomActivityJS struct {
	RoomCode     string    `json:"roomCode"`
	Joins        int       `json:"joins"`
	GamesStarted int       `json:"gamesStarted"`
	LastEventAt  time.Time `json:"lastEventAt"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Stats require a database connection", http.StatusServiceUnavailable)
		return
	}

	hours := defaultStatsHours
	if v := r.URL.Query().Get("hours"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil || h <= 0 {
			http.Error(w, "Invalid hours", http.StatusBadRequest)
			return
		}
		hours = h
	}

	q := analytics.NewQueries(s.DB)
	summary, err := q.GetSummary(time.Now().Add(-time.Duration(hours)*time.Hour), 10)
	if err != nil {
		s.log.WithError(err).Error("stats query")
		http.Error(w, "Error loading stats", http.StatusInternalServerError)
		return
	}

	resp := statsResponse{
		Since:           summary.Since,
		Total:           summary.Total(),
		Counts:          make(map[string]int, len(summary.Counts)),
		DistinctPlayers: summary.DistinctPlayers,
		BusiestRooms:    make([]roomActivityJS, 0, len(summary.BusiestRooms)),
	}
	for _, k := range []events.Kind{events.RoomCreated, events.PlayerJoined, events.PlayerLeft, events.HostChanged, events.GameStarted} {
		resp.Counts[string(k)] = summary.Counts[k]
	}
	for _, room := range summary.BusiestRooms {
		resp.BusiestRooms = append(resp.BusiestRooms, roomActivityJS(room))
	}
	writeJSON(w, http.StatusOK, resp)
}
