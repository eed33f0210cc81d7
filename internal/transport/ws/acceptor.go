// Package ws provides the WebSocket acceptor that attaches browser clients
// to the match coordinator. Each connection gets a generated handle, a
// greeting carrying that handle, and a read/write pump pair; every inbound
// frame is handed to the coordinator and every disconnect triggers its
// cleanup pass.
package ws

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/streamerquiz/matchserver/internal/config"
	"github.com/streamerquiz/matchserver/internal/hub"
)

// FrameHandler processes the traffic of attached connections.
// The coordinator implements it.
type FrameHandler interface {
	// HandleConnect is called once when a connection attaches.
	HandleConnect(handle string)
	// HandleFrame is called for every inbound text frame.
	HandleFrame(handle string, raw []byte)
	// HandleDisconnect is called once when the connection drops.
	HandleDisconnect(handle string)
}

// Acceptor listens for WebSocket connections and dispatches their frames to
// a FrameHandler.
type Acceptor struct {
	cfg      config.WebSocketConfig
	hub      *hub.Hub
	handler  FrameHandler
	logger   *zap.Logger
	upgrader websocket.Upgrader

	httpSrv  *http.Server
	listener net.Listener
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewAcceptor creates a WebSocket acceptor with the given configuration.
//
// Precondition: cfg must have a valid port; h, handler, and logger must be
// non-nil.
func NewAcceptor(cfg config.WebSocketConfig, h *hub.Hub, handler FrameHandler, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		hub:     h,
		handler: handler,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// Browser clients connect from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ListenAndServe starts the listener and accepts connections until Stop is
// called. This method blocks until the acceptor is stopped.
//
// Precondition: The acceptor must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", a.serveWS)

	a.mu.Lock()
	a.listener = listener
	a.httpSrv = &http.Server{Handler: mux}
	a.running = true
	srv := a.httpSrv
	a.mu.Unlock()

	a.logger.Info("websocket acceptor listening",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving websocket connections: %w", err)
	}
	return nil
}

// serveWS upgrades one HTTP request into an attached client connection.
func (a *Acceptor) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Error("upgrading connection",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	handle := uuid.New().String()
	c := newClient(handle, conn, a.cfg, a.logger)

	a.logger.Info("client attached",
		zap.String("handle", handle),
		zap.String("remote_addr", r.RemoteAddr),
		zap.Int("connections", a.hub.ConnectionCount()+1),
	)

	a.hub.Register(c)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		c.writePump()
	}()

	a.handler.HandleConnect(handle)

	start := time.Now()
	c.readPump(a.handler)

	// The read pump returned: the connection is gone. Tear down delivery
	// first so cleanup broadcasts only reach the remaining members.
	c.close()
	a.hub.Unregister(handle)
	a.handler.HandleDisconnect(handle)

	a.logger.Info("client detached",
		zap.String("handle", handle),
		zap.Duration("duration", time.Since(start)),
	)
}

// Stop gracefully stops the acceptor, closing the listener and all attached
// connections and waiting for the write pumps to finish.
//
// Postcondition: All connections are closed and goroutines have exited.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	srv := a.httpSrv
	a.mu.Unlock()

	// Close forces hijacked websocket connections shut; Shutdown would wait
	// on them forever.
	if srv != nil {
		_ = srv.Close()
	}
	a.wg.Wait()

	a.logger.Info("websocket acceptor stopped")
}

// Addr returns the actual listening address, or empty string if not yet
// listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning returns whether the acceptor is currently accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}
