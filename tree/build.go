package tree

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/fantinsib/arboria/internal/rng"
)

// buildTask is one pending subtree: the row subset to split, its depth, and
// where to backpatch once its node index is known. parentIdx == -1 marks
// the root. This is the teacher's tree/build.go stack-based construction
// (buildStack/stackItem), adapted to backpatch a flat node array instead of
// linking *Node pointers.
type buildTask struct {
	idx       []int32
	depth     int
	parentIdx int
	left      bool
}

// ClassifierParams bundles the hyperparameters the builder needs out of the
// estimator; spec.md §4.G validates these before Fit calls in here.
type ClassifierParams struct {
	NClasses       int
	Criterion      Criterion
	MaxDepth       *int // nil means unbounded
	MinSampleSplit int
	MTry           int
	Seed           uint64
}

// BuildClassifier grows one classification tree over the rows named by idx,
// returning its flat node array (spec.md §3/§4.C). idx is consumed
// (reordered in place during partitioning) but not retained by the caller.
func BuildClassifier(X [][]float32, y []int32, idx []int32, p ClassifierParams) []ClassNode {
	impFn := impurityFn(p.Criterion)
	r := rng.New(p.Seed)
	nFeatures := 0
	if len(X) > 0 {
		nFeatures = len(X[0])
	}

	root := len(idx)
	xBuf := make([]float32, root)
	ctL := make([]int32, p.NClasses)
	ctR := make([]int32, p.NClasses)
	zero := make([]int32, p.NClasses)
	ct := make([]int32, p.NClasses)

	nodes := make([]ClassNode, 0, 2*root+1)
	stack := []buildTask{{idx: idx, depth: 0, parentIdx: -1}}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := len(task.idx)
		for i := range ct {
			ct[i] = 0
		}
		for _, id := range task.idx {
			ct[y[id]]++
		}
		impurity := impFn(n, ct)

		myIdx := len(nodes)
		nodes = append(nodes, ClassNode{})
		if task.parentIdx >= 0 {
			if task.left {
				nodes[task.parentIdx].Left = uint32(myIdx)
			} else {
				nodes[task.parentIdx].Right = uint32(myIdx)
			}
		}

		leaf, splitFeature, splitThreshold := false, 0, float32(0)
		homogeneous := isHomogeneousClass(task.idx, y)

		switch {
		case n < 2, p.MinSampleSplit > 0 && n < p.MinSampleSplit,
			p.MaxDepth != nil && task.depth >= *p.MaxDepth, homogeneous:
			leaf = true
		default:
			cands := sampleFeaturesFor(r, nFeatures, p.MTry)
			feat, thr, found, _ := classSplit(X, y, task.idx, ct, impurity, impFn, cands, xBuf[:n], ctL, ctR, zero)
			if !found {
				leaf = true
			} else {
				splitFeature, splitThreshold = feat, thr
			}
		}

		if leaf {
			counts := make([]int32, p.NClasses)
			copy(counts, ct)
			probs := make([]float32, p.NClasses)
			var best int32 = -1
			var bestIdx uint32
			for c, cnt := range counts {
				probs[c] = float32(cnt) / float32(n)
				if cnt > best {
					best = cnt
					bestIdx = uint32(c)
				}
			}
			nodes[myIdx] = ClassNode{
				Leaf:        true,
				Samples:     n,
				Impurity:    impurity,
				ClassCounts: counts,
				ClassIdx:    bestIdx,
				Probs:       probs,
			}
			continue
		}

		splitPos := partition(X, task.idx, splitFeature, splitThreshold)
		left := task.idx[:splitPos]
		right := task.idx[splitPos:]

		nodes[myIdx] = ClassNode{
			Leaf:      false,
			Feature:   uint32(splitFeature),
			Threshold: splitThreshold,
			Samples:   n,
			Impurity:  impurity,
		}

		stack = append(stack, buildTask{idx: right, depth: task.depth + 1, parentIdx: myIdx, left: false})
		stack = append(stack, buildTask{idx: left, depth: task.depth + 1, parentIdx: myIdx, left: true})
	}

	return nodes
}

// RegressorParams mirrors ClassifierParams for regression trees; the
// criterion is always SSE so it is not repeated here.
type RegressorParams struct {
	MaxDepth       *int // nil means unbounded
	MinSampleSplit int
	MTry           int
	Seed           uint64
}

// BuildRegressor grows one regression tree, analogous to BuildClassifier
// but scoring splits by SSE reduction and storing a mean Value at leaves.
// The one-time per-node variance (reported as Impurity, not used on the
// split-finding hot path) comes from gonum.org/v1/gonum/stat.
func BuildRegressor(X [][]float32, y []float32, idx []int32, p RegressorParams) []RegNode {
	r := rng.New(p.Seed)
	nFeatures := 0
	if len(X) > 0 {
		nFeatures = len(X[0])
	}

	root := len(idx)
	xBuf := make([]float32, root)
	ys := make([]float64, root)

	nodes := make([]RegNode, 0, 2*root+1)
	stack := []buildTask{{idx: idx, depth: 0, parentIdx: -1}}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := len(task.idx)
		buf := ys[:n]
		var sum, sumSq float64
		for i, id := range task.idx {
			v := float64(y[id])
			buf[i] = v
			sum += v
			sumSq += v * v
		}
		mean := sum / float64(n)
		variance := 0.0
		if n > 1 {
			variance = stat.Variance(buf, nil)
		}

		myIdx := len(nodes)
		nodes = append(nodes, RegNode{})
		if task.parentIdx >= 0 {
			if task.left {
				nodes[task.parentIdx].Left = uint32(myIdx)
			} else {
				nodes[task.parentIdx].Right = uint32(myIdx)
			}
		}

		leaf, splitFeature, splitThreshold := false, 0, float32(0)
		homogeneous := n > 0 && sumSq-sum*sum/float64(n) <= splitEpsilon

		switch {
		case n < 2, p.MinSampleSplit > 0 && n < p.MinSampleSplit,
			p.MaxDepth != nil && task.depth >= *p.MaxDepth, homogeneous:
			leaf = true
		default:
			cands := sampleFeaturesFor(r, nFeatures, p.MTry)
			feat, thr, found, _ := regSplit(X, y, task.idx, sum, sumSq, cands, xBuf[:n])
			if !found {
				leaf = true
			} else {
				splitFeature, splitThreshold = feat, thr
			}
		}

		if leaf {
			nodes[myIdx] = RegNode{
				Leaf:     true,
				Samples:  n,
				Impurity: variance,
				Value:    float32(mean),
			}
			continue
		}

		splitPos := partition(X, task.idx, splitFeature, splitThreshold)
		left := task.idx[:splitPos]
		right := task.idx[splitPos:]

		nodes[myIdx] = RegNode{
			Leaf:      false,
			Feature:   uint32(splitFeature),
			Threshold: splitThreshold,
			Samples:   n,
			Impurity:  variance,
		}

		stack = append(stack, buildTask{idx: right, depth: task.depth + 1, parentIdx: myIdx, left: false})
		stack = append(stack, buildTask{idx: left, depth: task.depth + 1, parentIdx: myIdx, left: true})
	}

	return nodes
}

func isHomogeneousClass(idx []int32, y []int32) bool {
	if len(idx) == 0 {
		return true
	}
	first := y[idx[0]]
	for _, id := range idx[1:] {
		if y[id] != first {
			return false
		}
	}
	return true
}

// sampleFeaturesFor resolves the mtry<=0/mtry>nFeatures degenerate cases
// before handing off to sampleFeatures' Fisher-Yates draw.
func sampleFeaturesFor(r *rand.Rand, nFeatures, mtry int) []int {
	if nFeatures == 0 {
		return nil
	}
	if mtry <= 0 || mtry > nFeatures {
		mtry = nFeatures
	}
	return sampleFeatures(r, nFeatures, mtry)
}
