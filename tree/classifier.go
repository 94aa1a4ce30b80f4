package tree

import (
	"encoding/gob"
	"io"

	"github.com/fantinsib/arboria/errs"
)

// DecisionTreeClassifier is a single CART classification tree stored as a
// flat node array (spec.md §3). It descends from the teacher's
// tree.Classifier (_examples/wlattner-rf/tree/classifier.go), replacing the
// pointer-linked Node tree and package-global *rand.Rand with the flat
// array and per-tree deterministic rng.New(Seed) this package's builder
// uses.
type DecisionTreeClassifier struct {
	Nodes          []ClassNode
	NClasses       int
	NFeatures      int
	Criterion      Criterion
	MaxDepth       *int // nil means unbounded; a non-nil value <= 0 is rejected by Fit
	MinSampleSplit int
	MTry           int
	Seed           uint64
}

// Fit grows the tree from X (n x p, row-major) and integer-coded labels y in
// [0, NClasses). Row indices not in idx are ignored, letting a forest's
// bootstrap sampler reuse one X/y pair across many trees (spec.md §4.D/§4.E).
func (t *DecisionTreeClassifier) Fit(X [][]float32, y []int32, idx []int32) error {
	if len(X) == 0 {
		return errs.New(errs.InvalidArgument, "classification tree: empty training set")
	}
	if t.NClasses < 2 {
		return errs.New(errs.InvalidArgument, "classification tree: NClasses must be >= 2, got %d", t.NClasses)
	}
	if t.MaxDepth != nil && *t.MaxDepth <= 0 {
		return errs.New(errs.InvalidArgument, "classification tree: MaxDepth must be >= 1 when set, got %d", *t.MaxDepth)
	}

	nFeatures := len(X[0])
	for i, row := range X {
		if len(row) != nFeatures {
			return errs.New(errs.InvalidArgument, "classification tree: row %d has %d features, want %d", i, len(row), nFeatures)
		}
	}

	t.NFeatures = nFeatures
	own := make([]int32, len(idx))
	copy(own, idx)

	t.Nodes = BuildClassifier(X, y, own, ClassifierParams{
		NClasses:       t.NClasses,
		Criterion:      t.Criterion,
		MaxDepth:       t.MaxDepth,
		MinSampleSplit: t.MinSampleSplit,
		MTry:           t.MTry,
		Seed:           t.Seed,
	})
	return nil
}

// leafFor walks the tree from the root to the leaf reached by row x.
func (t *DecisionTreeClassifier) leafFor(x []float32) *ClassNode {
	n := &t.Nodes[0]
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = &t.Nodes[n.Left]
		} else {
			n = &t.Nodes[n.Right]
		}
	}
	return n
}

// Predict returns the majority class id (index into [0, NClasses)) for each
// row of X.
func (t *DecisionTreeClassifier) Predict(X [][]float32) []int32 {
	out := make([]int32, len(X))
	for i, row := range X {
		out[i] = int32(t.leafFor(row).ClassIdx)
	}
	return out
}

// PredictProba returns the per-class probability vector reached by each row
// of X.
func (t *DecisionTreeClassifier) PredictProba(X [][]float32) [][]float32 {
	out := make([][]float32, len(X))
	for i, row := range X {
		out[i] = t.leafFor(row).Probs
	}
	return out
}

// VarImp reports each feature's share of total impurity decrease across the
// tree (Gini/permutation-free importance, matching the teacher's
// tree.Classifier.VarImp), normalized to sum to 1.
func (t *DecisionTreeClassifier) VarImp() []float64 {
	imp := make([]float64, t.NFeatures)
	if len(t.Nodes) == 0 {
		return imp
	}

	for _, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		l, r := t.Nodes[n.Left], t.Nodes[n.Right]
		imp[n.Feature] += float64(n.Samples)*n.Impurity -
			float64(l.Samples)*l.Impurity - float64(r.Samples)*r.Impurity
	}

	root := float64(t.Nodes[0].Samples)
	total := 0.0
	for i := range imp {
		imp[i] /= root
		total += imp[i]
	}
	if total > 0 {
		for i := range imp {
			imp[i] /= total
		}
	}
	return imp
}

// Save serializes the tree with encoding/gob, matching the teacher's
// persistence format.
func (t *DecisionTreeClassifier) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(t)
}

// Load deserializes a tree previously written by Save.
func (t *DecisionTreeClassifier) Load(r io.Reader) error {
	return gob.NewDecoder(r).Decode(t)
}
