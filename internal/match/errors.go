package match

import "errors"

// ErrMatchNotFound is returned when a referenced code has no live match.
// It is reported to the single requesting connection and is never fatal.
var ErrMatchNotFound = errors.New("match not found")

// ErrCodeSpaceExhausted is returned when code generation hits the collision
// retry cap. It fails only the create request that triggered it.
var ErrCodeSpaceExhausted = errors.New("match code generation exhausted retries")
