package forest

import "math/rand/v2"

// Bootstrap draws nSamples row indices with replacement from [0, n) using r,
// returning the draw and an in-bag mask for out-of-bag scoring (spec.md
// §4.D). nSamples defaults to n for a standard bootstrap; spec.md allows a
// max_samples override for oversampling/undersampling each tree's training
// set, the teacher's forest/forest.go bootstrapInx does not support.
func Bootstrap(r *rand.Rand, n, nSamples int) (idx []int32, inBag []bool) {
	if nSamples <= 0 {
		nSamples = n
	}
	idx = make([]int32, nSamples)
	inBag = make([]bool, n)
	for i := range idx {
		id := r.IntN(n)
		idx[i] = int32(id)
		inBag[id] = true
	}
	return idx, inBag
}

// OutOfBag returns the row indices not present in inBag.
func OutOfBag(inBag []bool) []int32 {
	var oob []int32
	for i, in := range inBag {
		if !in {
			oob = append(oob, int32(i))
		}
	}
	return oob
}
