package dtest

import (
	"crypto/sha256"
	"math/rand/v2"
	"testing"
)

// RandomIntsForTest returns n pseudorandom ints in [0, max),
// seeded from the test name so failures reproduce.
func RandomIntsForTest(t *testing.T, n, max int) []int {
	// A sha256 digest is exactly the size of a chacha8 seed,
	// whatever the length of the test name.
	seed := sha256.Sum256([]byte(t.Name()))
	r := rand.New(rand.NewChaCha8(seed))

	out := make([]int, n)
	for i := range out {
		out[i] = r.IntN(max)
	}
	return out
}
