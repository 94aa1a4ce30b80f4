// Package rng implements the deterministic seed hierarchy the forest
// trainer needs: one master seed fans out into one seed per tree, and the
// fan-out is stable regardless of how many workers draw from it
// concurrently (each draw happens on the calling goroutine before the tree
// task is dispatched, never inside the worker).
//
// math/rand/v2's PCG generator is used instead of the teacher's
// wall-clock-seeded math/rand (tree/classifier.go's setRandState used
// time.Now().UnixNano(), forest/classifier.go seeded workers with
// int64(id)*time.Now().UnixNano()) because spec.md's P3/P4 properties
// require bit-identical forests for a fixed seed independent of thread
// count, which a wall-clock seed can never give.
package rng

import "math/rand/v2"

// TreeSeeds derives n deterministic uint64 seeds from a single forest seed.
// The same (seed, n) always produces the same slice, regardless of the
// number of workers that later consume it.
func TreeSeeds(seed uint64, n int) []uint64 {
	master := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}
	return seeds
}

// New returns a *rand.Rand seeded deterministically from a uint64, for use
// within a single tree's bootstrap sampling and mtry feature subsampling.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
