package tree

import (
	"encoding/gob"
	"io"

	"github.com/fantinsib/arboria/errs"
)

// DecisionTreeRegressor is a single CART regression tree, SSE's the
// analogue of DecisionTreeClassifier: descended from the teacher's
// tree.Regressor (_examples/wlattner-rf/tree/regressor.go), rebuilt around
// the flat node array and deterministic per-tree rng this package's builder
// uses.
type DecisionTreeRegressor struct {
	Nodes          []RegNode
	NFeatures      int
	MaxDepth       *int // nil means unbounded; a non-nil value <= 0 is rejected by Fit
	MinSampleSplit int
	MTry           int
	Seed           uint64
}

// Fit grows the tree from X (n x p, row-major) and targets y, restricted to
// the rows named by idx (spec.md §4.D/§4.E bootstrap sampling).
func (t *DecisionTreeRegressor) Fit(X [][]float32, y []float32, idx []int32) error {
	if len(X) == 0 {
		return errs.New(errs.InvalidArgument, "regression tree: empty training set")
	}
	if t.MaxDepth != nil && *t.MaxDepth <= 0 {
		return errs.New(errs.InvalidArgument, "regression tree: MaxDepth must be >= 1 when set, got %d", *t.MaxDepth)
	}

	nFeatures := len(X[0])
	for i, row := range X {
		if len(row) != nFeatures {
			return errs.New(errs.InvalidArgument, "regression tree: row %d has %d features, want %d", i, len(row), nFeatures)
		}
	}

	t.NFeatures = nFeatures
	own := make([]int32, len(idx))
	copy(own, idx)

	t.Nodes = BuildRegressor(X, y, own, RegressorParams{
		MaxDepth:       t.MaxDepth,
		MinSampleSplit: t.MinSampleSplit,
		MTry:           t.MTry,
		Seed:           t.Seed,
	})
	return nil
}

func (t *DecisionTreeRegressor) leafFor(x []float32) *RegNode {
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

// Predict returns the predicted value (leaf mean) for each row of X.
func (t *DecisionTreeRegressor) Predict(X [][]float32) []float32 {
	out := make([]float32, len(X))
	for i, row := range X {
		out[i] = t.leafFor(row).Value
	}
	return out
}

// VarImp reports each feature's share of total variance reduction across
// the tree, normalized to sum to 1.
func (t *DecisionTreeRegressor) VarImp() []float64 {
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

// Save serializes the tree with encoding/gob.
func (t *DecisionTreeRegressor) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(t)
}

// Load deserializes a tree previously written by Save.
func (t *DecisionTreeRegressor) Load(r io.Reader) error {
	return gob.NewDecoder(r).Decode(t)
}
