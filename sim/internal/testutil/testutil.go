// Package testutil provides shared test helpers for the sim packages.
// It must not import sim so that sim's own tests can use it.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
)

// Keys splits a space-separated access list: Keys("A B A C").
func Keys(s string) []string {
	return strings.Fields(s)
}

// RandomAccesses returns n accesses drawn uniformly from alphabet distinct
// keys named k0..k{alphabet-1}, deterministic for seed.
func RandomAccesses(seed int64, n, alphabet int) []string {
	rng := rand.New(rand.NewSource(seed))
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("k%d", rng.Intn(alphabet))
	}
	return out
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
