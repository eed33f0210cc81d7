package match

import (
	"sync"
	"time"
)

// DefaultCodeRetryCap bounds the collision retry loop in Create. At 32^6
// codes the collision probability per attempt is ~9.3e-10, so the cap exists
// only to guard against a pathological randomness source.
const DefaultCodeRetryCap = 10

// Store is the in-memory registry of live matches and the single source of
// truth for match existence and membership. All methods are safe for
// concurrent use.
//
// Store exclusively owns the code → Match mapping; every method that exposes
// a match returns a deep snapshot, never the live record.
type Store struct {
	mu       sync.RWMutex
	matches  map[string]*Match
	gen      CodeGenerator
	retryCap int
}

// NewStore creates an empty Store using the given code generator.
//
// Precondition: gen must be non-nil. retryCap <= 0 falls back to
// DefaultCodeRetryCap.
func NewStore(gen CodeGenerator, retryCap int) *Store {
	if retryCap <= 0 {
		retryCap = DefaultCodeRetryCap
	}
	return &Store{
		matches:  make(map[string]*Match),
		gen:      gen,
		retryCap: retryCap,
	}
}

// Create registers a new match hosted by hostHandle with the given config and
// default game state, generating a code that does not collide with any live
// match.
//
// Postcondition: Returns the created match snapshot, or ErrCodeSpaceExhausted
// if the retry cap was hit. The returned code is unique among live matches.
func (s *Store) Create(hostHandle string, cfg map[string]any) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := ""
	for i := 0; i < s.retryCap; i++ {
		candidate := s.gen.Generate()
		if _, taken := s.matches[candidate]; !taken {
			code = candidate
			break
		}
	}
	if code == "" {
		return Match{}, ErrCodeSpaceExhausted
	}

	if cfg == nil {
		cfg = make(map[string]any)
	}
	m := &Match{
		Code:      code,
		Host:      hostHandle,
		Players:   []Player{},
		Config:    cfg,
		State:     NewGameState(),
		CreatedAt: time.Now(),
	}
	s.matches[code] = m

	return m.Snapshot(), nil
}

// Get returns a snapshot of the match with the given code.
//
// Postcondition: Returns ErrMatchNotFound if no live match has the code.
func (s *Store) Get(code string) (Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[code]
	if !ok {
		return Match{}, ErrMatchNotFound
	}
	return m.Snapshot(), nil
}

// AddPlayer appends a player record to the match's player list. A handle
// already present in the list is appended again rather than de-duplicated;
// clients joining twice is allowed.
//
// Postcondition: Membership count increases by exactly 1, or
// ErrMatchNotFound is returned.
func (s *Store) AddPlayer(code, handle, displayName string) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[code]
	if !ok {
		return Match{}, ErrMatchNotFound
	}
	m.Players = append(m.Players, Player{ID: handle, Name: displayName})
	return m.Snapshot(), nil
}

// RemovePlayer removes every player record matching the handle from every
// live match.
//
// Postcondition: Returns snapshots of the matches that were modified, so the
// caller can decide what to broadcast.
func (s *Store) RemovePlayer(handle string) []Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified []Match
	for _, m := range s.matches {
		kept := m.Players[:0]
		for _, p := range m.Players {
			if p.ID != handle {
				kept = append(kept, p)
			}
		}
		if len(kept) != len(m.Players) {
			m.Players = kept
			modified = append(modified, m.Snapshot())
		}
	}
	return modified
}

// DestroyByHost deletes every match whose host equals the handle.
//
// Postcondition: Returns the codes of the matches destroyed; Get on any of
// them reports ErrMatchNotFound afterwards.
func (s *Store) DestroyByHost(handle string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var destroyed []string
	for code, m := range s.matches {
		if m.Host == handle {
			delete(s.matches, code)
			destroyed = append(destroyed, code)
		}
	}
	return destroyed
}

// MergeConfig shallow-merges the partial config into the match's config:
// top-level keys present in patch are overwritten, absent keys preserved.
//
// Postcondition: Returns the updated snapshot or ErrMatchNotFound.
func (s *Store) MergeConfig(code string, patch map[string]any) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[code]
	if !ok {
		return Match{}, ErrMatchNotFound
	}
	mergeConfig(m.Config, patch)
	return m.Snapshot(), nil
}

// MergeState applies the partial state patch to the match's game state with
// top-level replace semantics (see StatePatch).
//
// Postcondition: Returns the updated snapshot or ErrMatchNotFound.
func (s *Store) MergeState(code string, patch StatePatch) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[code]
	if !ok {
		return Match{}, ErrMatchNotFound
	}
	patch.apply(&m.State)
	return m.Snapshot(), nil
}

// Count returns the number of live matches. Consumed by the status endpoints.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}
