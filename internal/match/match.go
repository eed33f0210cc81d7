// Package match implements the in-memory registry of live quiz matches and
// the shared state carried by each match. The Store is the single source of
// truth for match existence and membership; all other components operate on
// snapshots it hands out.
package match

import (
	"fmt"
	"time"
)

const (
	// PlayerSlots is the fixed number of player score/name/image slots per match.
	PlayerSlots = 8
	// TeamSlots is the fixed number of team score slots per match.
	TeamSlots = 4
)

// Player is one entry in a match's player list. ID is the connection handle
// the player joined with.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GameState is the host-controlled shared state of a match.
//
// Invariant: The score, name, and image arrays are fixed-length. Merges
// replace an array wholesale; they never change its length.
type GameState struct {
	Revealed     map[string]bool      `json:"revealed"`
	ShowAnswer   map[string]bool      `json:"showAnswer"`
	PlayerScores [PlayerSlots]int     `json:"playerScores"`
	TeamScores   [TeamSlots]int       `json:"teamScores"`
	PlayerNames  [PlayerSlots]string  `json:"playerNames"`
	PlayerImages [PlayerSlots]*string `json:"playerImages"`
}

// Match is a short-lived, code-identified session grouping a host and players.
//
// Invariant: Host is the connection handle that created the match; its
// disconnect destroys the match. Players is append-ordered and may contain
// the same handle more than once (a client may join twice).
type Match struct {
	Code      string         `json:"id"`
	Host      string         `json:"host"`
	Players   []Player       `json:"players"`
	Config    map[string]any `json:"config"`
	State     GameState      `json:"state"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewGameState returns the default state a freshly created match starts with:
// empty reveal/answer maps, zeroed scores, and placeholder player names.
func NewGameState() GameState {
	st := GameState{
		Revealed:   make(map[string]bool),
		ShowAnswer: make(map[string]bool),
	}
	for i := range st.PlayerNames {
		st.PlayerNames[i] = defaultPlayerName(i)
	}
	return st
}

func defaultPlayerName(slot int) string {
	return fmt.Sprintf("Player %d", slot+1)
}

// Snapshot returns a deep copy of the match safe to hand outside the Store.
// Maps, the player list, and the config are copied so later mutations do not
// race with a caller serializing the snapshot.
func (m *Match) Snapshot() Match {
	out := *m

	out.Players = make([]Player, len(m.Players))
	copy(out.Players, m.Players)

	out.Config = make(map[string]any, len(m.Config))
	for k, v := range m.Config {
		out.Config[k] = v
	}

	out.State.Revealed = make(map[string]bool, len(m.State.Revealed))
	for k, v := range m.State.Revealed {
		out.State.Revealed[k] = v
	}
	out.State.ShowAnswer = make(map[string]bool, len(m.State.ShowAnswer))
	for k, v := range m.State.ShowAnswer {
		out.State.ShowAnswer[k] = v
	}

	return out
}
