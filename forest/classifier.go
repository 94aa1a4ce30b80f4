package forest

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fantinsib/arboria/errs"
	"github.com/fantinsib/arboria/internal/rng"
	"github.com/fantinsib/arboria/internal/workerpool"
	"github.com/fantinsib/arboria/tree"
)

// mtrySeedOffset derives the tree-level (Fisher-Yates mtry) seed stream from
// a distinct point in the master seed space than the bootstrap draw stream,
// so the two do not correlate despite sharing one user-facing Seed field.
const mtrySeedOffset = 0xA5A5A5A5A5A5A5A5

// RandomForestClassifier trains and holds an ensemble of classification
// trees (spec.md §4.D/§4.E/§4.F). It descends from the teacher's
// forest.Classifier (_examples/wlattner-rf/forest/classifier.go), replacing
// its channel-based worker pool with internal/workerpool and its wall-clock
// per-worker seeding with internal/rng's deterministic seed hierarchy.
type RandomForestClassifier struct {
	NTrees         int
	Criterion      tree.Criterion
	MaxDepth       *int // nil means unbounded; a non-nil value <= 0 is rejected
	MinSampleSplit int
	MTry           MTry
	MaxSamples     int // 0 means one bootstrap draw per training row
	NWorkers       int
	ComputeOOB     bool
	Seed           uint64

	Trees           []*tree.DecisionTreeClassifier
	NFeatures       int
	NSamples        int
	NClasses        int
	Labels          *LabelMap
	ConfusionMatrix [][]int32
	OOBAccuracy     float64
}

// Fit bootstraps NTrees training sets from X/y and grows one tree per set,
// up to NWorkers concurrently. y's distinct values need not be dense or
// non-negative: Fit builds the sorted-unique label-index map first (spec.md
// §4.E step 2) and trains every tree against the encoded 0..K-1 labels, so
// Predict/PredictProba can map back through Labels. If any tree's
// construction fails, Fit cancels the remaining trees and returns a
// TrainFailed error (spec.md §5); a hyperparameter rejected before any tree
// is spawned (including one surfaced through the worker pool itself) stays
// an InvalidArgument error rather than being wrapped as TrainFailed.
func (f *RandomForestClassifier) Fit(ctx context.Context, X [][]float32, y []int32) error {
	if f.NTrees < 1 {
		return errs.New(errs.InvalidArgument, "random forest: NTrees must be >= 1, got %d", f.NTrees)
	}
	if len(X) == 0 || len(X) != len(y) {
		return errs.New(errs.InvalidArgument, "random forest: X and y must be non-empty and equal length")
	}
	if f.MaxDepth != nil && *f.MaxDepth <= 0 {
		return errs.New(errs.InvalidArgument, "random forest: MaxDepth must be >= 1 when set, got %d", *f.MaxDepth)
	}

	labels, encoded := NewLabelMap(y)
	if labels.NClasses() < 2 {
		return errs.New(errs.InvalidArgument, "random forest: y must contain >= 2 distinct classes, got %d", labels.NClasses())
	}

	runID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{"run": runID, "n_trees": f.NTrees, "n_samples": len(X)})
	log.Info("fitting random forest classifier")

	f.NFeatures = len(X[0])
	f.NSamples = len(X)
	f.NClasses = labels.NClasses()
	f.Labels = labels
	mtry, err := f.MTry.Resolve(f.NFeatures)
	if err != nil {
		return err
	}

	bootSeeds := rng.TreeSeeds(f.Seed, f.NTrees)
	mtrySeeds := rng.TreeSeeds(f.Seed^mtrySeedOffset, f.NTrees)

	bootIdx := make([][]int32, f.NTrees)
	inBag := make([][]bool, f.NTrees)
	for i := 0; i < f.NTrees; i++ {
		r := rng.New(bootSeeds[i])
		bootIdx[i], inBag[i] = Bootstrap(r, len(X), f.MaxSamples)
	}

	trees, err := workerpool.Run(ctx, f.NTrees, f.NWorkers, func(_ context.Context, i int) (*tree.DecisionTreeClassifier, error) {
		clf := &tree.DecisionTreeClassifier{
			NClasses:       f.NClasses,
			Criterion:      f.Criterion,
			MaxDepth:       f.MaxDepth,
			MinSampleSplit: f.MinSampleSplit,
			MTry:           mtry,
			Seed:           mtrySeeds[i],
		}
		if err := clf.Fit(X, encoded, bootIdx[i]); err != nil {
			return nil, err
		}
		return clf, nil
	})
	if err != nil {
		if errors.Is(err, errs.InvalidArg) {
			return err
		}
		wrapped := errs.Wrap(errs.TrainFailed, err, "random forest classifier training failed")
		return errs.WithRun(wrapped, runID)
	}
	f.Trees = trees

	if f.ComputeOOB {
		ctr := newClassOOBCtr(len(X), f.NClasses)
		for i, t := range f.Trees {
			oobIdx := OutOfBag(inBag[i])
			if len(oobIdx) == 0 {
				continue
			}
			xSub := make([][]float32, len(oobIdx))
			for k, row := range oobIdx {
				xSub[k] = X[row]
			}
			ctr.update(oobIdx, t.PredictProba(xSub))
		}
		f.ConfusionMatrix, f.OOBAccuracy = ctr.compute(encoded)
		log.WithField("oob_accuracy", f.OOBAccuracy).Info("computed out-of-bag accuracy")
	}

	return nil
}

// Predict returns the predicted original label value for each row of X: the
// forest averages every tree's leaf probability vector (the same average
// PredictProba returns) and argmaxes it, ties broken toward the lowest
// class index, then decodes the winning index back through Labels (spec.md
// §4.F).
func (f *RandomForestClassifier) Predict(X [][]float32) []int32 {
	probs := f.PredictProba(X)
	out := make([]int32, len(X))
	for i, row := range probs {
		var best float32 = -1
		var bestClass int32
		for class, p := range row {
			if p > best {
				best = p
				bestClass = int32(class)
			}
		}
		out[i] = f.Labels.Decode(bestClass)
	}
	return out
}

// PredictProba returns the forest-averaged per-class probability vector for
// each row of X.
func (f *RandomForestClassifier) PredictProba(X [][]float32) [][]float32 {
	probs := make([][]float32, len(X))
	for i := range probs {
		probs[i] = make([]float32, f.NClasses)
	}

	nTrees := float32(len(f.Trees))
	for _, t := range f.Trees {
		tProbs := t.PredictProba(X)
		for row, p := range tProbs {
			for class, v := range p {
				probs[row][class] += v / nTrees
			}
		}
	}
	return probs
}

// VarImp averages each tree's impurity-decrease feature importances.
func (f *RandomForestClassifier) VarImp() []float64 {
	imp := make([]float64, f.NFeatures)
	if len(f.Trees) == 0 {
		return imp
	}
	nTrees := float64(len(f.Trees))
	for _, t := range f.Trees {
		for i, v := range t.VarImp() {
			imp[i] += v / nTrees
		}
	}
	return imp
}
