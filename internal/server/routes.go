package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"partylobby/internal/config"
	"partylobby/internal/db"
	"partylobby/internal/events"
	"partylobby/internal/logging"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const (
	eventBatchSize     = 50
	eventFlushInterval = 500 * time.Millisecond
	shutdownTimeout    = 10 * time.Second
)

func Run() error {
	appCfg := config.Load()
	logger := logging.New(appCfg.Env, appCfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := New(appCfg, logger)
	log := srv.log

	// Optional database connection
	if appCfg.DatabaseURL != "" {
		database, err := db.Connect(appCfg.DatabaseURL, log)
		if err != nil {
			log.WithError(err).Warn("database unavailable, running without event log")
			go discardEvents(ctx, srv.Events.Lobby, log)
		} else {
			defer database.Close()
			if err := database.Migrate(); err != nil {
				log.WithError(err).Error("migration failed")
			}
			srv.DB = database
			go eventBatchWriter(ctx, database, srv.Events.Lobby, log)
			log.Info("database connected and migrations applied")
		}
	} else {
		log.Info("DATABASE_URL not set, running without event log")
		go discardEvents(ctx, srv.Events.Lobby, log)
	}

	httpSrv := &http.Server{
		Addr:              appCfg.Addr(),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// WebSocket handlers outlive Shutdown once hijacked; tie them to ctx.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", appCfg.Addr()).Info("server listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// Routes returns the HTTP handler with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.Metrics.Handler())
	mux.HandleFunc("GET /rooms", s.handleListRooms)
	mux.HandleFunc("GET /rooms/{code}", s.handleGetRoom)
	mux.HandleFunc("POST /rooms/code", s.handleSuggestCode)
	mux.HandleFunc("GET /stats", s.handleStats)

	c := cors.New(cors.Options{
		AllowedOrigins: s.Config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	})
	return c.Handler(mux)
}

func eventBatchWriter(ctx context.Context, database *db.DB, src <-chan events.Event, log *logrus.Entry) {
	ticker := time.NewTicker(eventFlushInterval)
	defer ticker.Stop()

	batch := make([]events.Event, 0, eventBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := database.BatchRecordEvents(batch); err != nil {
			log.WithError(err).WithField("events", len(batch)).Error("recording lobby events")
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case ev := <-src:
			batch = append(batch, ev)
			if len(batch) >= eventBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func discardEvents(ctx context.Context, src <-chan events.Event, log *logrus.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-src:
			log.WithFields(logrus.Fields{"kind": ev.Kind, "room": ev.RoomCode}).Debug("lobby event")
		}
	}
}
