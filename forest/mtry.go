// Package forest implements random forest training and inference: bootstrap
// sampling, parallel tree construction over a bounded worker pool, out-of-bag
// scoring, and prediction aggregation (spec.md §4.D/§4.E/§4.F). It descends
// from the teacher's forest package (_examples/wlattner-rf/forest), replacing
// its channel-based worker pool and wall-clock seeding with
// internal/workerpool and internal/rng, and its pointer-tree
// tree.Classifier/tree.Regressor with this module's flat-array
// tree.DecisionTreeClassifier/tree.DecisionTreeRegressor.
package forest

import (
	"math"

	"github.com/fantinsib/arboria/errs"
)

// MTryKind tags how a tree's feature-subsample size is resolved, replacing
// the magic-sentinel-integer scheme original_source/arboria/_api.py uses
// (max_features=-99 means "sqrt", -98 means "log") with an explicit tagged
// union resolved once Fit knows the feature count.
type MTryKind int

const (
	MTryFixed MTryKind = iota
	MTrySqrt
	MTryLog2
	MTryAll
)

// MTry is a not-yet-resolved max_features hyperparameter.
type MTry struct {
	Kind MTryKind
	N    int // only meaningful when Kind == MTryFixed
}

// ParseMTry resolves the string aliases "sqrt", "log2"/"log" and "all"
// accepted for the max_features parameter; any other string is not a valid alias
// (numeric values are parsed by the caller and passed as MTry{Kind:
// MTryFixed}).
func ParseMTry(s string) (MTry, bool) {
	switch s {
	case "sqrt":
		return MTry{Kind: MTrySqrt}, true
	case "log2", "log":
		return MTry{Kind: MTryLog2}, true
	case "all":
		return MTry{Kind: MTryAll}, true
	default:
		return MTry{}, false
	}
}

// Resolve turns an MTry spec into a concrete feature-subsample size, given
// the number of features in the training data. The derived kinds
// (sqrt/log2/all) follow spec.md's own max(1, floor(...)) formula and are
// clamped into [1, nFeatures] accordingly. An explicit numeric value
// (MTryFixed) is not clamped: one that is <=0 or exceeds nFeatures is
// rejected with an InvalidArgument error instead of silently coerced.
func (m MTry) Resolve(nFeatures int) (int, error) {
	if m.Kind == MTryFixed {
		if m.N <= 0 || m.N > nFeatures {
			return 0, errs.New(errs.InvalidArgument, "random forest: max_features %d out of range [1, %d]", m.N, nFeatures)
		}
		return m.N, nil
	}

	var n int
	switch m.Kind {
	case MTrySqrt:
		n = int(math.Sqrt(float64(nFeatures)))
	case MTryLog2:
		n = int(math.Log2(float64(nFeatures)))
	case MTryAll:
		n = nFeatures
	}
	if n < 1 {
		n = 1
	}
	if n > nFeatures {
		n = nFeatures
	}
	return n, nil
}
