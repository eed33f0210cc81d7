package coordinator

import (
	"encoding/json"

	"github.com/streamerquiz/matchserver/internal/match"
)

// Client action kinds. These are the event names the browser clients emit;
// renaming them breaks the wire protocol.
const (
	ActionCreateMatch     = "createMatch"
	ActionJoinMatch       = "joinMatch"
	ActionChangeScore     = "changeScore"
	ActionUpdateConfig    = "updateConfig"
	ActionUpdateGameState = "updateGameState"
	ActionOffer           = "webrtc-offer"
	ActionAnswer          = "webrtc-answer"
	ActionCandidate       = "webrtc-ice-candidate"
)

// Server event kinds.
const (
	EventConnected        = "connected"
	EventResult           = "result"
	EventMatchUpdate      = "matchUpdate"
	EventScoreUpdate      = "scoreUpdate"
	EventPeerDisconnected = "peer-disconnected"
	EventError            = "error"
)

// Action is the inbound client envelope. Which fields are required depends on
// Type; absent fields decode to zero values and are validated per action.
//
// Seq is the optional result-callback correlation id: when present, the
// server answers the action with a direct EventResult envelope echoing it.
type Action struct {
	Type string `json:"type"`
	Seq  *int64 `json:"seq,omitempty"`

	MatchID    string            `json:"matchId,omitempty"`
	PlayerName string            `json:"playerName,omitempty"`
	Config     map[string]any    `json:"config,omitempty"`
	State      *match.StatePatch `json:"state,omitempty"`

	PlayerID *int `json:"playerId,omitempty"`
	Delta    int  `json:"delta,omitempty"`
	NewScore int  `json:"newScore,omitempty"`

	TargetHandle string          `json:"targetHandle,omitempty"`
	SlotIndex    int             `json:"slotIndex,omitempty"`
	Offer        json.RawMessage `json:"offer,omitempty"`
	Answer       json.RawMessage `json:"answer,omitempty"`
	Candidate    json.RawMessage `json:"candidate,omitempty"`
}

// signalPayload returns the opaque negotiation payload for a signaling action.
func (a Action) signalPayload() json.RawMessage {
	switch a.Type {
	case ActionOffer:
		return a.Offer
	case ActionAnswer:
		return a.Answer
	case ActionCandidate:
		return a.Candidate
	}
	return nil
}

// connectedEvent tells a freshly attached client its connection handle.
type connectedEvent struct {
	Type   string `json:"type"`
	Handle string `json:"handle"`
}

// resultEvent is the direct answer to an action that carried a Seq.
type resultEvent struct {
	Type    string       `json:"type"`
	Seq     int64        `json:"seq"`
	Success bool         `json:"success"`
	MatchID string       `json:"matchId,omitempty"`
	Match   *match.Match `json:"match,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// matchUpdateEvent carries the full current match snapshot, not a diff.
type matchUpdateEvent struct {
	Type  string      `json:"type"`
	Match match.Match `json:"match"`
}

// scoreUpdateEvent is the minimal delta broadcast for score changes. It
// deliberately never includes the match record.
type scoreUpdateEvent struct {
	Type     string `json:"type"`
	PlayerID int    `json:"playerId"`
	Delta    int    `json:"delta"`
	NewScore int    `json:"newScore"`
}

// peerDisconnectedEvent notifies a room that one of its members dropped.
type peerDisconnectedEvent struct {
	Type   string `json:"type"`
	Handle string `json:"handle"`
}

// signalEvent is the relayed peer-negotiation envelope. Exactly one of
// Offer/Answer/Candidate is set, matching Type.
type signalEvent struct {
	Type       string          `json:"type"`
	FromHandle string          `json:"fromHandle"`
	Offer      json.RawMessage `json:"offer,omitempty"`
	Answer     json.RawMessage `json:"answer,omitempty"`
	Candidate  json.RawMessage `json:"candidate,omitempty"`
	SlotIndex  int             `json:"slotIndex"`
}

// errorEvent reports a failed action to the acting connection only.
type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
