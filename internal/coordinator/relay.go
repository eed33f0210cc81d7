package coordinator

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Relay routes peer-negotiation envelopes between two specific connections.
// It is a pure routing layer scoped by recipient handle, not by room: the
// payload is never interpreted or validated, delivery is fire-and-forget and
// at most once, and a target that is not connected means the message is
// silently dropped rather than an error.
type Relay struct {
	bus    Bus
	logger *zap.Logger
}

// NewRelay creates a Relay delivering on the given bus.
//
// Precondition: bus and logger must be non-nil.
func NewRelay(bus Bus, logger *zap.Logger) *Relay {
	return &Relay{bus: bus, logger: logger}
}

// Deliver sends a {kind, fromHandle, payload, slotIndex} envelope to exactly
// the connection identified by target.
//
// Postcondition: Returns true if the envelope was handed to the target's
// queue; false if the target is not connected (accepted behavior, not an
// error).
func (r *Relay) Deliver(kind, from, target string, payload json.RawMessage, slotIndex int) bool {
	event := signalEvent{
		Type:       kind,
		FromHandle: from,
		SlotIndex:  slotIndex,
	}
	switch kind {
	case ActionOffer:
		event.Offer = payload
	case ActionAnswer:
		event.Answer = payload
	case ActionCandidate:
		event.Candidate = payload
	}

	frame, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("encoding signal envelope", zap.Error(err))
		return false
	}

	delivered := r.bus.Send(target, frame)
	r.logger.Debug("relayed signal",
		zap.String("kind", kind),
		zap.String("from", from),
		zap.String("target", target),
		zap.Int("slot", slotIndex),
		zap.Bool("delivered", delivered),
	)
	return delivered
}
