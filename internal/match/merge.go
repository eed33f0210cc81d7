package match

// StatePatch is a partial GameState update. Only fields present in the
// incoming payload are applied; each present field replaces the corresponding
// GameState field wholesale. There is no element-by-element merge: a partial
// playerScores array replaces the entire array, so callers must always submit
// complete sub-structures.
//
// Map fields use nil to mean "absent" (an empty JSON object decodes to a
// non-nil empty map, which is a valid replacement). Array fields use pointers
// for the same reason.
type StatePatch struct {
	Revealed     map[string]bool       `json:"revealed"`
	ShowAnswer   map[string]bool       `json:"showAnswer"`
	PlayerScores *[PlayerSlots]int     `json:"playerScores"`
	TeamScores   *[TeamSlots]int       `json:"teamScores"`
	PlayerNames  *[PlayerSlots]string  `json:"playerNames"`
	PlayerImages *[PlayerSlots]*string `json:"playerImages"`
}

// apply overwrites the target state's top-level keys with the patch's present
// fields, leaving absent keys untouched.
//
// Postcondition: Array lengths are unchanged.
func (p StatePatch) apply(st *GameState) {
	if p.Revealed != nil {
		st.Revealed = p.Revealed
	}
	if p.ShowAnswer != nil {
		st.ShowAnswer = p.ShowAnswer
	}
	if p.PlayerScores != nil {
		st.PlayerScores = *p.PlayerScores
	}
	if p.TeamScores != nil {
		st.TeamScores = *p.TeamScores
	}
	if p.PlayerNames != nil {
		st.PlayerNames = *p.PlayerNames
	}
	if p.PlayerImages != nil {
		st.PlayerImages = *p.PlayerImages
	}
}

// mergeConfig overwrites dst's top-level keys with those present in patch.
// Keys absent from patch are preserved.
func mergeConfig(dst, patch map[string]any) {
	for k, v := range patch {
		dst[k] = v
	}
}
