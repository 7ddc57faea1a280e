package server

import (
	"context"
	"encoding/json"
	"net/http"

	"partylobby/internal/broadcast"
	"partylobby/internal/config"
	"partylobby/internal/db"
	"partylobby/internal/events"
	"partylobby/internal/lobby"
	"partylobby/internal/metrics"
	"partylobby/internal/protocol"
	"partylobby/internal/registry"
	"partylobby/internal/rooms"
	"partylobby/internal/wshub"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Config  config.Config
	Rooms   *rooms.Store
	Hub     *wshub.Hub
	Lobby   *lobby.Router
	Events  *events.Bus
	Metrics *metrics.Metrics
	DB      *db.DB // nil if no database configured
	log     *logrus.Entry
}

// New builds the in-memory lobby. The database is attached by Run.
func New(cfg config.Config, logger *logrus.Logger) *Server {
	log := logger.WithField("service", "partylobby")

	store := rooms.NewStore()
	reg := registry.New()
	hub := wshub.NewHub()
	bus := events.NewBus(cfg.EventBuffer)
	m := metrics.New()
	b := broadcast.NewBroadcaster(store, reg, hub, m, log)

	return &Server{
		Config:  cfg,
		Rooms:   store,
		Hub:     hub,
		Lobby:   lobby.NewRouter(store, reg, b, bus, m, log),
		Events:  bus,
		Metrics: m,
		log:     log.WithField("component", "server"),
	}
}

// handleWS runs one client connection from accept to close.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.Config.AllowedOrigins,
	})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}
	conn.SetReadLimit(s.Config.MaxMessageBytes)

	id := registry.NewConnID()
	log := s.log.WithField("conn", id)
	client := wshub.NewClient(id, conn, s.Config.SendBuffer)
	s.Hub.Register(client)
	s.Lobby.Connect(id)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		err := client.WritePump(ctx, s.Config.WriteTimeout, s.Config.PingInterval)
		if err != nil && ctx.Err() == nil {
			log.WithError(err).Debug("write pump stopped")
			conn.CloseNow()
		}
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				log.WithError(err).Debug("read loop ended")
			}
			break
		}
		s.Lobby.Handle(id, data)
	}

	s.Lobby.Disconnect(id)
	s.Hub.Unregister(id)
	cancel()
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db_error", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	list := s.Rooms.List()
	out := make([]protocol.PlayersUpdate, 0, len(list))
	for _, snap := range list {
		out = append(out, protocol.NewPlayersUpdate(snap))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := rooms.NormalizeCode(r.PathValue("code"))
	snap, ok := s.Rooms.Snapshot(code)
	if !ok {
		writeJSON(w, http.StatusNotFound, protocol.NewError(protocol.MsgRoomNotFound))
		return
	}
	writeJSON(w, http.StatusOK, protocol.NewPlayersUpdate(snap))
}

func (s *Server) handleSuggestCode(w http.ResponseWriter, r *http.Request) {
	code, err := s.Rooms.SuggestCode()
	if err != nil {
		s.log.WithError(err).Error("suggest room code")
		http.Error(w, "Failed to generate room code", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"roomCode": code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Debug("writing response")
	}
}
