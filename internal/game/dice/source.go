package dice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are cryptographically secure and uniformly
// distributed in [0, n) for any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// seededSource is a deterministic Source for replaying an exchange.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a Source whose sequence is fully determined by seed.
//
// Postcondition: Two sources built from the same seed produce identical sequences.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: mrand.New(mrand.NewSource(seed))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// ScriptedSource replays a fixed sequence of face values. It exists so that
// every branch of an exchange can be driven deterministically.
type ScriptedSource struct {
	mu     sync.Mutex
	faces  []int
	cursor int
}

// NewScriptedSource returns a ScriptedSource that yields faces in order.
// Faces are 1-based die values, e.g. 20 for a natural twenty.
func NewScriptedSource(faces ...int) *ScriptedSource {
	cp := make([]int, len(faces))
	copy(cp, faces)
	return &ScriptedSource{faces: cp}
}

// Intn returns the next scripted face minus one, clamped into [0, n).
//
// Precondition: n > 0; at least one face must remain. Panics when exhausted.
func (s *ScriptedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.faces) {
		panic(fmt.Sprintf("dice: scripted source exhausted after %d rolls", len(s.faces)))
	}
	face := s.faces[s.cursor]
	s.cursor++
	switch {
	case face < 1:
		return 0
	case face > n:
		return n - 1
	default:
		return face - 1
	}
}

// Remaining reports how many scripted faces have not been consumed.
func (s *ScriptedSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.faces) - s.cursor
}
