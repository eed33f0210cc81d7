// Package coordinator orchestrates match lifecycle transitions. Every
// client-initiated action flows through the Coordinator: it mutates the match
// store, then publishes the result through the broadcast gateway, while
// peer-negotiation traffic bypasses the store and goes straight through the
// relay.
package coordinator

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/streamerquiz/matchserver/internal/match"
)

// Bus is the delivery surface the coordinator publishes on. The hub
// implements it; tests substitute an in-memory recorder.
type Bus interface {
	// Send delivers a frame to one handle; false means it was dropped.
	Send(handle string, frame []byte) bool
	// Broadcast delivers a frame to every subscriber of a room channel.
	Broadcast(code string, frame []byte)
	// Subscribe adds a handle to a room channel.
	Subscribe(code, handle string)
	// DropRoom tears down a room channel, leaving connections registered.
	DropRoom(code string)
}

// Coordinator dispatches client actions against the match store and decides
// what gets broadcast, relayed, or reported back.
//
// All action handling is serialized on a single mutex, so every
// read-modify-write sequence on a match (merge-then-broadcast, disconnect
// cleanup) is atomic with respect to other actions. Errors stay local to the
// action that caused them: they are reported to the acting connection only
// and never broadcast.
type Coordinator struct {
	mu     sync.Mutex
	store  *match.Store
	bus    Bus
	gate   *Gateway
	relay  *Relay
	logger *zap.Logger
}

// New creates a Coordinator operating on the given store and bus.
//
// Precondition: store, bus, and logger must be non-nil.
func New(store *match.Store, bus Bus, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		bus:    bus,
		gate:   NewGateway(bus, logger),
		relay:  NewRelay(bus, logger),
		logger: logger,
	}
}

// HandleConnect greets a freshly attached connection with its handle.
func (c *Coordinator) HandleConnect(handle string) {
	c.direct(handle, connectedEvent{Type: EventConnected, Handle: handle})
	c.logger.Info("client connected", zap.String("handle", handle))
}

// HandleFrame processes one inbound frame from the connection identified by
// handle. The frame either completes or fails synchronously; failures are
// reported to the sender and never affect other matches.
func (c *Coordinator) HandleFrame(handle string, raw []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var a Action
	if err := json.Unmarshal(raw, &a); err != nil {
		c.fail(handle, nil, fmt.Errorf("malformed action: %w", err))
		return
	}

	switch a.Type {
	case ActionCreateMatch:
		c.createMatch(handle, a)
	case ActionJoinMatch:
		c.joinMatch(handle, a)
	case ActionChangeScore:
		c.changeScore(handle, a)
	case ActionUpdateConfig:
		c.updateConfig(handle, a)
	case ActionUpdateGameState:
		c.updateGameState(handle, a)
	case ActionOffer, ActionAnswer, ActionCandidate:
		c.signal(handle, a)
	default:
		c.fail(handle, a.Seq, fmt.Errorf("malformed action: unknown type %q", a.Type))
	}
}

// HandleDisconnect runs the cleanup pass for a dropped connection: the handle
// is removed from every match's player list (each affected match gets an
// updated snapshot plus a peer-disconnected notification), and every match
// hosted by the handle is destroyed. Destroyed matches get no further
// broadcast; their members already saw the membership change.
func (c *Coordinator) HandleDisconnect(handle string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.store.RemovePlayer(handle) {
		c.gate.Snapshot(m)
		c.gate.PeerDisconnected(m.Code, handle)
		c.logger.Info("player removed from match",
			zap.String("handle", handle),
			zap.String("match", m.Code),
		)
	}

	for _, code := range c.store.DestroyByHost(handle) {
		c.bus.DropRoom(code)
		c.logger.Info("host disconnected, match destroyed",
			zap.String("handle", handle),
			zap.String("match", code),
		)
	}

	c.logger.Info("client disconnected", zap.String("handle", handle))
}

func (c *Coordinator) createMatch(handle string, a Action) {
	m, err := c.store.Create(handle, a.Config)
	if err != nil {
		c.fail(handle, a.Seq, err)
		return
	}

	c.bus.Subscribe(m.Code, handle)
	c.logger.Info("match created",
		zap.String("match", m.Code),
		zap.String("host", handle),
		zap.Int("active_matches", c.store.Count()),
	)

	if a.Seq == nil {
		// The creator has no way to learn the code without a result channel.
		c.logger.Warn("createMatch without seq, code unreachable by creator",
			zap.String("match", m.Code),
		)
		return
	}
	c.direct(handle, resultEvent{
		Type:    EventResult,
		Seq:     *a.Seq,
		Success: true,
		MatchID: m.Code,
	})
}

func (c *Coordinator) joinMatch(handle string, a Action) {
	if a.MatchID == "" {
		c.fail(handle, a.Seq, errors.New("malformed action: matchId is required"))
		return
	}
	name := a.PlayerName
	if name == "" {
		name = "Unknown"
	}

	m, err := c.store.AddPlayer(a.MatchID, handle, name)
	if err != nil {
		c.fail(handle, a.Seq, err)
		return
	}

	c.bus.Subscribe(m.Code, handle)
	if a.Seq != nil {
		c.direct(handle, resultEvent{
			Type:    EventResult,
			Seq:     *a.Seq,
			Success: true,
			Match:   &m,
		})
	}
	c.gate.Snapshot(m)

	c.logger.Info("player joined match",
		zap.String("match", m.Code),
		zap.String("handle", handle),
		zap.String("name", name),
		zap.Int("players", len(m.Players)),
	)
}

// changeScore broadcasts the minimal {playerId, delta, newScore} event to the
// match's members. The shared state itself is not touched here; hosts push
// authoritative score arrays through updateGameState.
func (c *Coordinator) changeScore(handle string, a Action) {
	if a.MatchID == "" || a.PlayerID == nil {
		c.fail(handle, a.Seq, errors.New("malformed action: matchId and playerId are required"))
		return
	}
	if _, err := c.store.Get(a.MatchID); err != nil {
		c.fail(handle, a.Seq, err)
		return
	}

	c.gate.ScoreDelta(a.MatchID, *a.PlayerID, a.Delta, a.NewScore)
	c.logger.Debug("score changed",
		zap.String("match", a.MatchID),
		zap.Int("player", *a.PlayerID),
		zap.Int("delta", a.Delta),
	)
}

func (c *Coordinator) updateConfig(handle string, a Action) {
	if a.MatchID == "" {
		c.fail(handle, a.Seq, errors.New("malformed action: matchId is required"))
		return
	}

	m, err := c.store.MergeConfig(a.MatchID, a.Config)
	if err != nil {
		c.fail(handle, a.Seq, err)
		return
	}

	c.gate.Snapshot(m)
	c.logger.Debug("config updated", zap.String("match", m.Code))
}

func (c *Coordinator) updateGameState(handle string, a Action) {
	if a.MatchID == "" || a.State == nil {
		c.fail(handle, a.Seq, errors.New("malformed action: matchId and state are required"))
		return
	}

	m, err := c.store.MergeState(a.MatchID, *a.State)
	if err != nil {
		c.fail(handle, a.Seq, err)
		return
	}

	c.gate.Snapshot(m)
	c.logger.Debug("game state updated", zap.String("match", m.Code))
}

func (c *Coordinator) signal(handle string, a Action) {
	if a.TargetHandle == "" {
		c.fail(handle, a.Seq, errors.New("malformed action: targetHandle is required"))
		return
	}
	c.relay.Deliver(a.Type, handle, a.TargetHandle, a.signalPayload(), a.SlotIndex)
}

// fail reports an action failure to the acting connection only: as a result
// envelope when the action carried a seq, otherwise as an error event.
func (c *Coordinator) fail(handle string, seq *int64, err error) {
	c.logger.Debug("action failed",
		zap.String("handle", handle),
		zap.Error(err),
	)
	if seq != nil {
		c.direct(handle, resultEvent{
			Type:    EventResult,
			Seq:     *seq,
			Success: false,
			Error:   err.Error(),
		})
		return
	}
	c.direct(handle, errorEvent{Type: EventError, Message: err.Error()})
}

func (c *Coordinator) direct(handle string, event any) {
	frame, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("encoding direct event", zap.Error(err))
		return
	}
	c.bus.Send(handle, frame)
}
