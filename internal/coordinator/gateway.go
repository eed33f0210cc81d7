package coordinator

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/streamerquiz/matchserver/internal/match"
)

// Gateway fans out room-scoped events. It is the single point where a
// mutation becomes visible to the other participants of a match: full
// snapshots for membership/config/state changes, a minimal delta for score
// changes. Delivery is at most once per currently subscribed connection.
type Gateway struct {
	bus    Bus
	logger *zap.Logger
}

// NewGateway creates a Gateway publishing on the given bus.
//
// Precondition: bus and logger must be non-nil.
func NewGateway(bus Bus, logger *zap.Logger) *Gateway {
	return &Gateway{bus: bus, logger: logger}
}

// Snapshot broadcasts the full current match record to every connection
// subscribed to the match's channel.
func (g *Gateway) Snapshot(m match.Match) {
	g.publish(m.Code, matchUpdateEvent{Type: EventMatchUpdate, Match: m})
}

// ScoreDelta broadcasts the minimal score-change event. The full match record
// is deliberately not included.
func (g *Gateway) ScoreDelta(code string, playerID, delta, newScore int) {
	g.publish(code, scoreUpdateEvent{
		Type:     EventScoreUpdate,
		PlayerID: playerID,
		Delta:    delta,
		NewScore: newScore,
	})
}

// PeerDisconnected notifies a match's members that the given handle dropped.
func (g *Gateway) PeerDisconnected(code, handle string) {
	g.publish(code, peerDisconnectedEvent{Type: EventPeerDisconnected, Handle: handle})
}

func (g *Gateway) publish(code string, event any) {
	frame, err := json.Marshal(event)
	if err != nil {
		g.logger.Error("encoding broadcast event",
			zap.String("room", code),
			zap.Error(err),
		)
		return
	}
	g.bus.Broadcast(code, frame)
}
