// Package hub tracks live client connections and the room channels they are
// subscribed to. It is the delivery layer for both room-scoped broadcasts and
// point-to-point relay messages; it never interprets payloads.
package hub

import (
	"sync"

	"go.uber.org/zap"
)

// Conn is a connected client as seen by the hub. Implementations enqueue
// outbound frames without blocking; a full or closed connection reports a
// failed enqueue and the frame is dropped.
type Conn interface {
	// Handle returns the connection's unique handle.
	Handle() string
	// Enqueue queues a frame for delivery. Returns false if the frame was
	// dropped because the connection is closed or its buffer is full.
	Enqueue(frame []byte) bool
}

// Hub is the registry of live connections and room subscriptions.
// All methods are safe for concurrent use.
//
// Invariant: every connection in a room set is also in the connection
// registry; Unregister removes both.
type Hub struct {
	logger *zap.Logger

	mu    sync.RWMutex
	conns map[string]Conn            // handle → connection
	rooms map[string]map[string]Conn // room code → handle → connection
}

// New creates an empty Hub.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		conns:  make(map[string]Conn),
		rooms:  make(map[string]map[string]Conn),
	}
}

// Register adds a connection to the registry under its handle.
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.Handle()] = c
}

// Unregister removes the connection and every room subscription it holds.
// Unknown handles are ignored.
func (h *Hub) Unregister(handle string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, handle)
	for code, members := range h.rooms {
		delete(members, handle)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
}

// Subscribe adds the connection with the given handle to a room channel.
// A handle that is not registered is ignored.
func (h *Hub) Subscribe(code, handle string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[handle]
	if !ok {
		return
	}
	if h.rooms[code] == nil {
		h.rooms[code] = make(map[string]Conn)
	}
	h.rooms[code][handle] = c
}

// DropRoom removes a room channel and all its subscriptions. Used when the
// room itself is destroyed; the connections stay registered.
func (h *Hub) DropRoom(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, code)
}

// Send delivers a frame to exactly the connection with the given handle.
// Delivery is fire-and-forget, at most once: an unknown handle or a failed
// enqueue drops the frame silently and returns false.
func (h *Hub) Send(handle string, frame []byte) bool {
	h.mu.RLock()
	c, ok := h.conns[handle]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	if !c.Enqueue(frame) {
		h.logger.Warn("dropping frame for slow connection",
			zap.String("handle", handle),
		)
		return false
	}
	return true
}

// Broadcast delivers a frame to every connection currently subscribed to the
// room channel, at most once each. There is no buffering or replay for
// connections that subscribe later.
func (h *Hub) Broadcast(code string, frame []byte) {
	h.mu.RLock()
	members := make([]Conn, 0, len(h.rooms[code]))
	for _, c := range h.rooms[code] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		if !c.Enqueue(frame) {
			h.logger.Warn("dropping broadcast frame for slow connection",
				zap.String("room", code),
				zap.String("handle", c.Handle()),
			)
		}
	}
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
