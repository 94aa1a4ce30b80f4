// Package tree implements the CART split finder and tree builder: the
// sort-and-scan split search over incrementally maintained class
// histograms / running sums (spec.md §4.A/§4.B), and the recursive
// partitioner that lays trees out as a flat, index-linked node array
// (spec.md §4.C). It is the direct descendant of the teacher's tree
// package (_examples/wlattner-rf/tree), generalized from the teacher's
// pointer-linked Node/RegNode trees to the flat array spec.md requires,
// and from the teacher's wall-clock global math/rand to the deterministic
// per-tree PRNG internal/rng provides.
package tree

import "math"

// Criterion selects the impurity/loss kernel used to score candidate
// splits. Gini and Entropy apply to classification trees, SSE to
// regression trees.
type Criterion int

const (
	Gini Criterion = iota
	Entropy
	SSE
)

func (c Criterion) String() string {
	switch c {
	case Gini:
		return "gini"
	case Entropy:
		return "entropy"
	case SSE:
		return "sse"
	default:
		return "unknown"
	}
}

// ParseCriterion resolves the user-facing criterion name ("gini",
// "entropy", "sse") to a Criterion, or ok=false for anything else.
func ParseCriterion(name string) (Criterion, bool) {
	switch name {
	case "gini":
		return Gini, true
	case "entropy":
		return Entropy, true
	case "sse":
		return SSE, true
	default:
		return 0, false
	}
}

// ClassNode is one entry in a classification tree's flat node array.
// Internal nodes carry the split rule (x[Feature] <= Threshold -> Left);
// leaves carry the class histogram. Left/Right are always strictly
// greater than this node's own index (spec.md §3 topological invariant).
type ClassNode struct {
	Leaf      bool
	Feature   uint32
	Threshold float32
	Left      uint32
	Right     uint32

	Samples  int
	Impurity float64

	// leaf-only fields
	ClassCounts []int32
	ClassIdx    uint32
	Probs       []float32
}

// RegNode is one entry in a regression tree's flat node array.
type RegNode struct {
	Leaf      bool
	Feature   uint32
	Threshold float32
	Left      uint32
	Right     uint32

	Samples  int
	Impurity float64

	// leaf-only field
	Value float32
}

// gini impurity: i_t = 1 - sum_k p(c_k|t)^2
func gini(n int, ct []int32) float64 {
	if n == 0 {
		return 0
	}
	g := 0.0
	for _, c := range ct {
		if c > 0 {
			p := float64(c) / float64(n)
			g += p * p
		}
	}
	return 1.0 - g
}

// entropy: e_t = -sum_k p(c_k|t) log2 p(c_k|t), with 0*log2(0) := 0
func entropy(n int, ct []int32) float64 {
	if n == 0 {
		return 0
	}
	e := 0.0
	for _, c := range ct {
		if c > 0 {
			p := float64(c) / float64(n)
			e -= p * math.Log2(p)
		}
	}
	return e
}

func impurityFn(c Criterion) func(int, []int32) float64 {
	switch c {
	case Entropy:
		return entropy
	default:
		return gini
	}
}
