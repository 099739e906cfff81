// Package server exposes the engine's command and query surface over a
// WebSocket, with a small JSON API for stats and run history.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/missions/config"
	"github.com/pthm-cable/missions/game"
	"github.com/pthm-cable/missions/history"
	"github.com/pthm-cable/missions/telemetry"
)

// Server wires the hub, the engine loop and the HTTP routes together.
type Server struct {
	hub      *Hub
	loop     *Loop
	store    *history.Store
	addr     string
	upgrader websocket.Upgrader
}

// New creates a server around g. store may be nil.
func New(g *game.Game, store *history.Store, cfg *config.Config) *Server {
	hub := NewHub()
	return &Server{
		hub:   hub,
		loop:  NewLoop(g, hub, cfg.Server, cfg.Derived.DT32),
		store: store,
		addr:  cfg.Server.Addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	mux.HandleFunc("/api/stats", s.serveStats)
	mux.HandleFunc("/api/history", s.serveHistory)
	return mux
}

// Run starts the hub and drives the engine loop until ctx is done.
func (s *Server) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.hub.Run(ctx)
	}()
	s.loop.Run(ctx)
	wg.Wait()
}

// ListenAndServe serves HTTP on the configured address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()
	go s.Run(ctx)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serveWs upgrades the connection and starts the client pumps.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(s.hub, conn)
	if !client.Register() {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	reply := make(chan Message, 1)
	if !s.hub.submit(request{cmd: Command{Type: CmdStats}, reply: reply}) {
		http.Error(w, "server stopping", http.StatusServiceUnavailable)
		return
	}

	select {
	case msg := <-reply:
		writeJSON(w, msg.Stats)
	case <-r.Context().Done():
	}
}

type historyResponse struct {
	Tally history.Tally          `json:"tally"`
	Runs  []telemetry.RunSummary `json:"runs"`
}

func (s *Server) serveHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "run history disabled", http.StatusNotFound)
		return
	}

	runs, err := s.store.Recent(20)
	if err != nil {
		slog.Error("failed to read history", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	tally, err := s.store.Tally()
	if err != nil {
		slog.Error("failed to tally history", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	writeJSON(w, historyResponse{Tally: tally, Runs: runs})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
