package forest

import (
	"math/rand/v2"

	"github.com/fantinsib/arboria/internal/rng"
)

func newTestRand(seed uint64) *rand.Rand {
	return rng.New(seed)
}
