package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/streamerquiz/matchserver/internal/config"
)

// pongGrace is the headroom added to the ping interval before an unanswered
// connection is considered dead.
const pongGrace = 6 * time.Second

// client is one attached WebSocket connection. The write pump is the only
// goroutine that touches the underlying connection for writes; everything
// outbound goes through the send queue.
type client struct {
	handle string
	conn   *websocket.Conn
	cfg    config.WebSocketConfig
	logger *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(handle string, conn *websocket.Conn, cfg config.WebSocketConfig, logger *zap.Logger) *client {
	return &client{
		handle: handle,
		conn:   conn,
		cfg:    cfg,
		logger: logger,
		send:   make(chan []byte, cfg.SendQueueSize),
		done:   make(chan struct{}),
	}
}

// Handle returns the connection handle assigned at attach time.
func (c *client) Handle() string { return c.handle }

// Enqueue queues a frame for the write pump. A full queue or a closing
// connection drops the frame and reports false; one slow consumer must not
// block the callers fanning out to a room.
func (c *client) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// close signals the write pump to finish. Safe to call more than once.
func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump consumes inbound frames until the connection drops and hands each
// one to the frame handler. It runs on the HTTP handler goroutine.
func (c *client) readPump(handler FrameHandler) {
	c.conn.SetReadLimit(c.cfg.MaxMessageBytes)
	readWait := c.cfg.PingInterval + pongGrace
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		msgType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read failed",
					zap.String("handle", c.handle),
					zap.Error(err),
				)
			}
			return
		}
		// Frames are reset the read deadline too: an active client that never
		// answers pings is still alive.
		_ = c.conn.SetReadDeadline(time.Now().Add(readWait))

		if msgType == websocket.TextMessage {
			handler.HandleFrame(c.handle, raw)
		}
	}
}

// writePump drains the send queue onto the connection and keeps the
// connection alive with periodic pings.
func (c *client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
