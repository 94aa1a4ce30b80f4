package tree

import (
	"math/rand/v2"
	"sort"
)

// splitEpsilon is the minimum impurity decrease (spec.md §4.B) a candidate
// split must clear to be accepted; anything at or below it is treated as
// "no improving split" and the node becomes a leaf.
const splitEpsilon = 1e-12

// sampleFeatures draws mtry distinct feature indices from [0, nFeatures)
// without replacement via a partial Fisher-Yates shuffle (Knuth Algorithm
// P), the same construction the teacher's tree/build.go and
// tree/classifier.go document in their comments, but driven by the tree's
// own deterministic PRNG rather than the package-global math/rand.
func sampleFeatures(r *rand.Rand, nFeatures, mtry int) []int {
	if mtry > nFeatures {
		mtry = nFeatures
	}
	perm := make([]int, nFeatures)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < mtry; i++ {
		j := i + r.IntN(nFeatures-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:mtry]
}

// byFeature sorts a column buffer and its paired row indices together.
type byFeature struct {
	x   []float32
	idx []int32
}

func (b byFeature) Len() int           { return len(b.x) }
func (b byFeature) Less(i, j int) bool { return b.x[i] < b.x[j] }
func (b byFeature) Swap(i, j int) {
	b.x[i], b.x[j] = b.x[j], b.x[i]
	b.idx[i], b.idx[j] = b.idx[j], b.idx[i]
}

// classSplit searches the features in cands for the best classification
// split of the rows in idx, returning found=false when no split clears
// splitEpsilon. Ties are broken deterministically by (feature index
// ascending, threshold ascending), independent of the (possibly randomized
// by mtry) order features are scanned in.
func classSplit(X [][]float32, y []int32, idx []int32, parentCounts []int32, parentImpurity float64,
	impFn func(int, []int32) float64, cands []int, xBuf []float32, ctL, ctR, zero []int32) (feature int, threshold float32, found bool, delta float64) {

	n := len(idx)
	sortedIdx := make([]int32, n)

	for _, feat := range cands {
		for i, id := range idx {
			xBuf[i] = X[id][feat]
		}
		xt := xBuf[:n]
		copy(sortedIdx, idx)
		sort.Sort(byFeature{xt, sortedIdx})

		if xt[n-1] <= xt[0] {
			continue // constant feature, no candidate thresholds
		}

		copy(ctL, zero)
		copy(ctR, parentCounts)
		nLeft, nRight := 0, n

		for i := 1; i < n; i++ {
			yVal := y[sortedIdx[i-1]]
			ctL[yVal]++
			nLeft++
			ctR[yVal]--
			nRight--

			if xt[i] <= xt[i-1] {
				continue // tied x values, can't cut here
			}

			iL := impFn(nLeft, ctL)
			iR := impFn(nRight, ctR)
			d := parentImpurity - (float64(nLeft)/float64(n))*iL - (float64(nRight)/float64(n))*iR
			thr := (xt[i-1] + xt[i]) / 2.0

			if !found || betterSplit(d, delta, feat, feature, thr, threshold) {
				found = true
				feature = feat
				threshold = thr
				delta = d
			}
		}
	}

	if !found || delta <= splitEpsilon {
		return 0, 0, false, 0
	}
	return feature, threshold, true, delta
}

// regSplit is classSplit's regression analogue: the criterion is SSE,
// maintained by sliding sum/sum-of-squares from the right partition to the
// left one sample at a time (spec.md §4.A).
func regSplit(X [][]float32, y []float32, idx []int32, parentSum, parentSumSq float64,
	cands []int, xBuf []float32) (feature int, threshold float32, found bool, delta float64) {

	n := len(idx)
	sortedIdx := make([]int32, n)
	parentSSE := parentSumSq - parentSum*parentSum/float64(n)

	for _, feat := range cands {
		for i, id := range idx {
			xBuf[i] = X[id][feat]
		}
		xt := xBuf[:n]
		copy(sortedIdx, idx)
		sort.Sort(byFeature{xt, sortedIdx})

		if xt[n-1] <= xt[0] {
			continue
		}

		var sL, sqL float64
		sR, sqR := parentSum, parentSumSq
		nLeft, nRight := 0, n

		for i := 1; i < n; i++ {
			yVal := float64(y[sortedIdx[i-1]])
			sL += yVal
			sqL += yVal * yVal
			nLeft++
			sR -= yVal
			sqR -= yVal * yVal
			nRight--

			if xt[i] <= xt[i-1] {
				continue
			}

			sseL := sqL - sL*sL/float64(nLeft)
			sseR := sqR - sR*sR/float64(nRight)
			objective := sseL + sseR
			d := parentSSE - objective
			thr := (xt[i-1] + xt[i]) / 2.0

			if !found || betterSplit(d, delta, feat, feature, thr, threshold) {
				found = true
				feature = feat
				threshold = thr
				delta = d
			}
		}
	}

	if !found || delta <= splitEpsilon {
		return 0, 0, false, 0
	}
	return feature, threshold, true, delta
}

// betterSplit implements spec.md §4.B's selection rule: strictly lower
// objective (here: strictly higher impurity decrease) wins; ties are
// broken by ascending feature index, then ascending threshold.
func betterSplit(dNew, dOld float64, featNew, featOld int, thrNew, thrOld float32) bool {
	if dNew != dOld {
		return dNew > dOld
	}
	if featNew != featOld {
		return featNew < featOld
	}
	return thrNew < thrOld
}

// partition reorders idx in place so that rows with X[row][feature] <=
// threshold come first ("ties go left", spec.md §3), returning the index
// of the first row in the right partition. This is the teacher's
// tree/build.go two-pointer in-place partition, unchanged.
func partition(X [][]float32, idx []int32, feature int, threshold float32) int {
	i, j := 0, len(idx)
	for i < j {
		if X[idx[i]][feature] <= threshold {
			i++
		} else {
			j--
			idx[i], idx[j] = idx[j], idx[i]
		}
	}
	return i
}
