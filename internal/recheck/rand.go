package recheck

import (
	cryptorand "crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/rand/v2"
)

// NewSeededRand returns a deterministic generator keyed from seed material:
// the SHA-256 of the seed string keys a ChaCha8 stream, so the same seed
// always reproduces the same sequence of draws.
func NewSeededRand(seed string) *rand.Rand {
	key := sha256.Sum256([]byte(seed))
	return rand.New(rand.NewChaCha8(key))
}

// NewSystemRand returns a generator keyed from process entropy. Every
// invocation draws fresh entropy; there is no shared generator state.
func NewSystemRand() (*rand.Rand, error) {
	var key [32]byte
	if _, err := cryptorand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("reading entropy: %w", err)
	}
	return rand.New(rand.NewChaCha8(key)), nil
}

// NewRand selects between the two generator constructors with one optional
// parameter: a non-empty seed is deterministic, an empty seed falls back to
// system entropy.
func NewRand(seed string) (*rand.Rand, error) {
	if seed != "" {
		return NewSeededRand(seed), nil
	}
	return NewSystemRand()
}
