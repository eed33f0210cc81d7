// Package httpapi exposes the read-only status endpoints. It consumes only
// the match count; it never mutates coordinator state.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/streamerquiz/matchserver/internal/config"
)

// MatchCounter reports the number of live matches. The match store
// implements it.
type MatchCounter interface {
	Count() int
}

// Server serves GET / and GET /health.
type Server struct {
	cfg     config.StatusConfig
	counter MatchCounter
	logger  *zap.Logger

	httpSrv  *http.Server
	listener net.Listener
	mu       sync.Mutex
	running  bool
}

// NewServer creates a status server backed by the given counter.
//
// Precondition: counter and logger must be non-nil.
func NewServer(cfg config.StatusConfig, counter MatchCounter, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		counter: counter,
		logger:  logger,
	}
}

// Handler returns the route table. Split out so tests can drive it without a
// listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respond(w, map[string]any{
		"status":  "ok",
		"message": "match server running",
		"matches": s.counter.Count(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, map[string]any{
		"status":  "healthy",
		"matches": s.counter.Count(),
	})
}

func (s *Server) respond(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("writing status response", zap.Error(err))
	}
}

// ListenAndServe starts the status listener. Blocks until Stop is called.
//
// Postcondition: The listener is closed when this method returns.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}

	s.mu.Lock()
	s.listener = listener
	s.httpSrv = &http.Server{Handler: s.Handler()}
	s.running = true
	srv := s.httpSrv
	s.mu.Unlock()

	s.logger.Info("status server listening",
		zap.String("addr", listener.Addr().String()),
	)

	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving status requests: %w", err)
	}
	return nil
}

// Stop gracefully stops the status server.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	srv := s.httpSrv
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("status server shutdown", zap.Error(err))
	}
	s.logger.Info("status server stopped")
}

// Addr returns the actual listening address, or empty string if not yet
// listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
