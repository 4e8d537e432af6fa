// Package dice provides the seeded randomness stream used by encounters.
//
// Every draw an encounter makes goes through a Source, so a fixed seed and a
// fixed sequence of decisions always reproduce the same battle.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidSides is returned when a draw is requested over an empty range.
var ErrInvalidSides = errors.New("dice: sides must be positive")

// Source yields uniform integers in [0, n).
type Source interface {
	Intn(n int) int
}

// NewSource returns a deterministic Source for the seed.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Percentile draws a value in [0, 100).
func Percentile(src Source) int {
	return src.Intn(100)
}

// Pick draws an index in [0, n).
func Pick(src Source, n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidSides
	}
	return src.Intn(n), nil
}

// LaneSeed derives the seed of an independent simulation lane.
func LaneSeed(base int64, lane int) int64 {
	return base + int64(lane)*7919
}

// PolicySeed derives the seed of a lane's decision-policy stream. Policies
// draw from their own stream so the encounter stream only sees targeting
// and crit or resist rolls.
func PolicySeed(base int64, lane int) int64 {
	return LaneSeed(base, lane) + 1
}
