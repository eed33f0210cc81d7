package random_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streamerquiz/matchserver/internal/random"
)

// TestCryptoSource_Intn_InRange verifies the postcondition:
// every value returned by Intn(32) is in [0, 32).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := random.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(32)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 32)
	}
}

// TestCryptoSource_Intn_PanicsOnZero verifies the precondition:
// Intn panics when called with n <= 0.
func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := random.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}
