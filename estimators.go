package arboria

import (
	"context"
	"encoding/gob"
	"io"

	"github.com/fantinsib/arboria/errs"
	"github.com/fantinsib/arboria/forest"
	"github.com/fantinsib/arboria/tree"
)

// DecisionTreeClassifier mirrors original_source/arboria/_api.py's
// DecisionTree: a single classification tree taking a max depth at
// construction and a criterion name at Fit time. Labels may be any int32
// values; Fit maps them to dense class indices and Predict maps back.
type DecisionTreeClassifier struct {
	MaxDepth       *int // nil means unbounded; a non-nil value <= 0 is rejected
	MinSampleSplit int

	tree   *tree.DecisionTreeClassifier
	labels *forest.LabelMap
}

// NewDecisionTreeClassifier returns a classifier with the given max depth
// and MinSampleSplit defaulted to 2, matching _DecisionTree's signature.
// Pass nil for an unbounded tree.
func NewDecisionTreeClassifier(maxDepth *int) *DecisionTreeClassifier {
	return &DecisionTreeClassifier{MaxDepth: maxDepth, MinSampleSplit: 2}
}

// Fit grows the tree, defaulting criterion to "gini" when empty (matching
// _api.py's fit(X, y, criterion="gini")). y's distinct values need not be
// dense or non-negative: Fit builds the sorted-unique label-index map and
// trains against the encoded labels, so Predict can map back through it.
func (d *DecisionTreeClassifier) Fit(X [][]float32, y []int32, criterion string) error {
	if criterion == "" {
		criterion = "gini"
	}
	crit, ok := tree.ParseCriterion(criterion)
	if !ok {
		return errs.New(errs.InvalidArgument, "decision tree: unknown criterion %q", criterion)
	}

	labels, encoded := forest.NewLabelMap(y)
	if labels.NClasses() < 2 {
		return errs.New(errs.InvalidArgument, "decision tree: y must contain >= 2 distinct classes, got %d", labels.NClasses())
	}

	t := &tree.DecisionTreeClassifier{
		NClasses:       labels.NClasses(),
		Criterion:      crit,
		MaxDepth:       d.MaxDepth,
		MinSampleSplit: d.MinSampleSplit,
	}
	if err := t.Fit(X, encoded, fullIndex(len(y))); err != nil {
		return err
	}
	d.tree = t
	d.labels = labels
	return nil
}

// Predict returns the predicted original label value for each row of X.
func (d *DecisionTreeClassifier) Predict(X [][]float32) []int32 {
	out := d.tree.Predict(X)
	for i, classIdx := range out {
		out[i] = d.labels.Decode(classIdx)
	}
	return out
}

// RandomForestClassifier mirrors original_source/arboria/_api.py's
// RandomForest: an ensemble classifier with a string/int max_features
// parameter resolved lazily once the training data's feature count is
// known (spec.md §4.G).
type RandomForestClassifier struct {
	NEstimators    int
	MaxDepth       *int // nil means unbounded; a non-nil value <= 0 is rejected
	MaxFeatures    string // "sqrt", "log"/"log2", "all", or "" to use MaxFeaturesN
	MaxFeaturesN   int
	MinSampleSplit int
	NWorkers       int // n_jobs: positive pool size, -1 for runtime.NumCPU(), anything else non-positive is rejected
	ComputeOOB     bool
	Seed           uint64

	ensemble *forest.RandomForestClassifier
}

// NewRandomForestClassifier returns a forest with NEstimators=70,
// MaxFeatures="sqrt", and NWorkers=1, matching _RandomForest's Python
// defaults (the Python binding trains its ensemble serially by default).
func NewRandomForestClassifier() *RandomForestClassifier {
	return &RandomForestClassifier{NEstimators: 70, MaxFeatures: "sqrt", MinSampleSplit: 2, NWorkers: 1}
}

func (f *RandomForestClassifier) resolveMTry() (forest.MTry, error) {
	if f.MaxFeatures != "" {
		m, ok := forest.ParseMTry(f.MaxFeatures)
		if !ok {
			return forest.MTry{}, errs.New(errs.InvalidArgument, "random forest: unknown max_features %q", f.MaxFeatures)
		}
		return m, nil
	}
	return forest.MTry{Kind: forest.MTryFixed, N: f.MaxFeaturesN}, nil
}

// Fit trains the ensemble, defaulting criterion to "gini" when empty.
func (f *RandomForestClassifier) Fit(ctx context.Context, X [][]float32, y []int32, criterion string) error {
	if criterion == "" {
		criterion = "gini"
	}
	crit, ok := tree.ParseCriterion(criterion)
	if !ok {
		return errs.New(errs.InvalidArgument, "random forest: unknown criterion %q", criterion)
	}
	mtry, err := f.resolveMTry()
	if err != nil {
		return err
	}

	rf := &forest.RandomForestClassifier{
		NTrees:         f.NEstimators,
		Criterion:      crit,
		MaxDepth:       f.MaxDepth,
		MinSampleSplit: f.MinSampleSplit,
		MTry:           mtry,
		NWorkers:       f.NWorkers,
		ComputeOOB:     f.ComputeOOB,
		Seed:           f.Seed,
	}
	if err := rf.Fit(ctx, X, y); err != nil {
		return err
	}
	f.ensemble = rf
	return nil
}

// Predict returns the predicted class label for each row of X.
func (f *RandomForestClassifier) Predict(X [][]float32) []int32 {
	return f.ensemble.Predict(X)
}

// PredictProba returns the forest-averaged class probability vector for
// each row of X, matching _RandomForest.predict_proba.
func (f *RandomForestClassifier) PredictProba(X [][]float32) [][]float32 {
	return f.ensemble.PredictProba(X)
}

// OutOfBag returns the out-of-bag accuracy computed during Fit. Unlike
// _RandomForest.out_of_bag(X, y), which recomputes OOB error on demand by
// re-deriving bootstrap membership, this returns the value Fit already
// computed when ComputeOOB was set — recomputing it would mean storing
// every tree's bootstrap mask past the point Fit needs it, for a value
// Fit can and does produce directly.
func (f *RandomForestClassifier) OutOfBag() (float64, error) {
	if f.ensemble == nil || !f.ComputeOOB {
		return 0, errs.New(errs.InvalidArgument, "random forest: fit with ComputeOOB=true before calling OutOfBag")
	}
	return f.ensemble.OOBAccuracy, nil
}

// VarImp averages each tree's impurity-decrease feature importances.
func (f *RandomForestClassifier) VarImp() []float64 {
	return f.ensemble.VarImp()
}

// Save serializes the fitted ensemble with encoding/gob, matching the
// teacher's Model.Save persistence format (model.go). Every tree/forest
// field gob encodes is exported, so the unexported ensemble pointer
// itself — not the facade struct wrapping it — is what gets encoded.
func (f *RandomForestClassifier) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(f.ensemble)
}

// Load deserializes an ensemble previously written by Save.
func (f *RandomForestClassifier) Load(r io.Reader) error {
	f.ensemble = &forest.RandomForestClassifier{}
	return gob.NewDecoder(r).Decode(f.ensemble)
}

// DecisionTreeRegressor mirrors DecisionTreeClassifier for a continuous
// target, using the SSE criterion the tree package builds regression
// trees with (there is no criterion choice to make: SSE is the only
// regression criterion spec.md defines).
type DecisionTreeRegressor struct {
	MaxDepth       *int // nil means unbounded; a non-nil value <= 0 is rejected
	MinSampleSplit int

	tree *tree.DecisionTreeRegressor
}

// NewDecisionTreeRegressor returns a regressor with the given max depth
// and MinSampleSplit defaulted to 2. Pass nil for an unbounded tree.
func NewDecisionTreeRegressor(maxDepth *int) *DecisionTreeRegressor {
	return &DecisionTreeRegressor{MaxDepth: maxDepth, MinSampleSplit: 2}
}

// Fit grows the regression tree.
func (d *DecisionTreeRegressor) Fit(X [][]float32, y []float32) error {
	t := &tree.DecisionTreeRegressor{
		MaxDepth:       d.MaxDepth,
		MinSampleSplit: d.MinSampleSplit,
	}
	if err := t.Fit(X, y, fullIndex(len(y))); err != nil {
		return err
	}
	d.tree = t
	return nil
}

// Predict returns the predicted value for each row of X.
func (d *DecisionTreeRegressor) Predict(X [][]float32) []float32 {
	return d.tree.Predict(X)
}

// RandomForestRegressor mirrors RandomForestClassifier for a continuous
// target.
type RandomForestRegressor struct {
	NEstimators    int
	MaxDepth       *int // nil means unbounded; a non-nil value <= 0 is rejected
	MaxFeatures    string
	MaxFeaturesN   int
	MinSampleSplit int
	NWorkers       int // n_jobs: positive pool size, -1 for runtime.NumCPU(), anything else non-positive is rejected
	ComputeOOB     bool
	Seed           uint64

	ensemble *forest.RandomForestRegressor
}

// NewRandomForestRegressor returns a forest with NEstimators=70,
// MaxFeatures="sqrt", and NWorkers=1, matching RandomForestClassifier's
// defaults (the Python binding's "sqrt" default is itself a
// classification-tuned choice; spec.md carries it over for both tasks
// rather than introducing a separate regression default like 1/3 of the
// features).
func NewRandomForestRegressor() *RandomForestRegressor {
	return &RandomForestRegressor{NEstimators: 70, MaxFeatures: "sqrt", MinSampleSplit: 2, NWorkers: 1}
}

func (f *RandomForestRegressor) resolveMTry() (forest.MTry, error) {
	if f.MaxFeatures != "" {
		m, ok := forest.ParseMTry(f.MaxFeatures)
		if !ok {
			return forest.MTry{}, errs.New(errs.InvalidArgument, "random forest: unknown max_features %q", f.MaxFeatures)
		}
		return m, nil
	}
	return forest.MTry{Kind: forest.MTryFixed, N: f.MaxFeaturesN}, nil
}

// Fit trains the ensemble.
func (f *RandomForestRegressor) Fit(ctx context.Context, X [][]float32, y []float32) error {
	mtry, err := f.resolveMTry()
	if err != nil {
		return err
	}

	rf := &forest.RandomForestRegressor{
		NTrees:         f.NEstimators,
		MaxDepth:       f.MaxDepth,
		MinSampleSplit: f.MinSampleSplit,
		MTry:           mtry,
		NWorkers:       f.NWorkers,
		ComputeOOB:     f.ComputeOOB,
		Seed:           f.Seed,
	}
	if err := rf.Fit(ctx, X, y); err != nil {
		return err
	}
	f.ensemble = rf
	return nil
}

// Predict returns the forest-averaged prediction for each row of X.
func (f *RandomForestRegressor) Predict(X [][]float32) []float32 {
	return f.ensemble.Predict(X)
}

// OutOfBag returns the (MSE, R²) pair computed during Fit, with the same
// computed-at-Fit-time rationale as RandomForestClassifier.OutOfBag.
func (f *RandomForestRegressor) OutOfBag() (mse, r2 float64, err error) {
	if f.ensemble == nil || !f.ComputeOOB {
		return 0, 0, errs.New(errs.InvalidArgument, "random forest: fit with ComputeOOB=true before calling OutOfBag")
	}
	return f.ensemble.OOBMSE, f.ensemble.OOBR2, nil
}

// VarImp averages each tree's variance-reduction feature importances.
func (f *RandomForestRegressor) VarImp() []float64 {
	return f.ensemble.VarImp()
}

// Save serializes the fitted ensemble with encoding/gob.
func (f *RandomForestRegressor) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(f.ensemble)
}

// Load deserializes an ensemble previously written by Save.
func (f *RandomForestRegressor) Load(r io.Reader) error {
	f.ensemble = &forest.RandomForestRegressor{}
	return gob.NewDecoder(r).Decode(f.ensemble)
}

// IntPtr returns a pointer to v, for populating the Option-shaped MaxDepth
// fields (nil means unbounded; IntPtr(0) is a deliberate, rejected zero).
func IntPtr(v int) *int {
	return &v
}

func fullIndex(n int) []int32 {
	idx := make([]int32, n)
	for i := range idx {
		idx[i] = int32(i)
	}
	return idx
}
