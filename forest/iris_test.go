package forest

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantinsib/arboria/tree"
)

// irisY labels the classic iris rows 0-49 setosa, 50-99 versicolor, 100-149
// virginica, matching the teacher's forest/iris_test.go ordering (the
// teacher ships the same 150 rows with string class names; this module's
// estimators take integer-coded labels, so the mapping is built here
// instead of carried as string data).
func irisY() []int32 {
	y := make([]int32, len(irisX))
	for i := range y {
		switch {
		case i < 50:
			y[i] = 0
		case i < 100:
			y[i] = 1
		default:
			y[i] = 2
		}
	}
	return y
}

func TestRandomForestClassifierFitPredictIris(t *testing.T) {
	X, y := irisX, irisY()
	clf := &RandomForestClassifier{NTrees: 20, Criterion: tree.Gini, MTry: MTry{Kind: MTrySqrt}, MinSampleSplit: 2, NWorkers: 1, Seed: 1}
	require.NoError(t, clf.Fit(context.Background(), X, y))

	pred := clf.Predict(X)
	correct := 0
	for i := range y {
		if pred[i] == y[i] {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(y))
	assert.GreaterOrEqual(t, accuracy, 0.98, "expected accuracy on iris data to be at least 0.98, got %f", accuracy)
}

func TestRandomForestClassifierOOBAccuracy(t *testing.T) {
	X, y := irisX, irisY()
	clf := &RandomForestClassifier{NTrees: 50, Criterion: tree.Gini, MTry: MTry{Kind: MTrySqrt}, MinSampleSplit: 2, NWorkers: 1, Seed: 2, ComputeOOB: true}
	require.NoError(t, clf.Fit(context.Background(), X, y))

	assert.Greater(t, clf.OOBAccuracy, 0.8)
	require.Len(t, clf.ConfusionMatrix, 3)
}

func TestRandomForestClassifierDeterministicAcrossRuns(t *testing.T) {
	X, y := irisX, irisY()
	a := &RandomForestClassifier{NTrees: 10, Criterion: tree.Gini, MTry: MTry{Kind: MTrySqrt}, MinSampleSplit: 2, NWorkers: 1, Seed: 42}
	require.NoError(t, a.Fit(context.Background(), X, y))

	b := &RandomForestClassifier{NTrees: 10, Criterion: tree.Gini, MTry: MTry{Kind: MTrySqrt}, MinSampleSplit: 2, NWorkers: 1, Seed: 42}
	require.NoError(t, b.Fit(context.Background(), X, y))

	assert.Equal(t, a.Predict(X), b.Predict(X))
	for i := range a.Trees {
		assert.Equal(t, a.Trees[i].Nodes, b.Trees[i].Nodes)
	}
}

func TestRandomForestClassifierPredictProbaSumsToOne(t *testing.T) {
	X, y := irisX, irisY()
	clf := &RandomForestClassifier{NTrees: 10, Criterion: tree.Gini, MTry: MTry{Kind: MTrySqrt}, MinSampleSplit: 2, NWorkers: 1, Seed: 3}
	require.NoError(t, clf.Fit(context.Background(), X, y))

	probs := clf.PredictProba(X[:5])
	for _, row := range probs {
		var sum float32
		for _, p := range row {
			sum += p
		}
		assert.InDelta(t, 1.0, float64(sum), 1e-4)
	}
}

func TestRandomForestClassifierSaveLoadTreesRoundTrip(t *testing.T) {
	X, y := irisX, irisY()
	clf := &RandomForestClassifier{NTrees: 5, Criterion: tree.Gini, MTry: MTry{Kind: MTrySqrt}, MinSampleSplit: 2, NWorkers: 1, Seed: 4}
	require.NoError(t, clf.Fit(context.Background(), X, y))

	var buf bytes.Buffer
	require.NoError(t, clf.Trees[0].Save(&buf))

	loaded := &tree.DecisionTreeClassifier{}
	require.NoError(t, loaded.Load(&buf))
	assert.Equal(t, clf.Trees[0].Predict(X), loaded.Predict(X))
}

func TestRandomForestClassifierHandlesNonDenseLabels(t *testing.T) {
	X := irisX
	y := irisY()
	// Relabel {0,1,2} to a sparse, negative-inclusive set {-5, 3, 100} to
	// exercise the label-index map rather than the dense 0..K-1 convention.
	sparse := map[int32]int32{0: -5, 1: 3, 2: 100}
	sparseY := make([]int32, len(y))
	for i, v := range y {
		sparseY[i] = sparse[v]
	}

	clf := &RandomForestClassifier{NTrees: 20, Criterion: tree.Gini, MTry: MTry{Kind: MTrySqrt}, MinSampleSplit: 2, NWorkers: 1, Seed: 1}
	require.NoError(t, clf.Fit(context.Background(), X, sparseY))

	pred := clf.Predict(X)
	correct := 0
	for i := range sparseY {
		if pred[i] == sparseY[i] {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(sparseY))
	assert.GreaterOrEqual(t, accuracy, 0.98)
}

func TestRandomForestClassifierRejectsBadHyperparameters(t *testing.T) {
	X, y := irisX, irisY()
	clf := &RandomForestClassifier{NTrees: 0}
	assert.Error(t, clf.Fit(context.Background(), X, y))

	singleClassY := make([]int32, len(y))
	clf2 := &RandomForestClassifier{NTrees: 10, MTry: MTry{Kind: MTrySqrt}, MinSampleSplit: 2, NWorkers: 1}
	assert.Error(t, clf2.Fit(context.Background(), X, singleClassY))
}

func BenchmarkIrisFit(b *testing.B) {
	X, y := irisX, irisY()
	for i := 0; i < b.N; i++ {
		clf := &RandomForestClassifier{NTrees: 10, Criterion: tree.Gini, MTry: MTry{Kind: MTrySqrt}, MinSampleSplit: 2, NWorkers: 1, Seed: uint64(i)}
		_ = clf.Fit(context.Background(), X, y)
	}
}

func BenchmarkIrisPredict(b *testing.B) {
	X, y := irisX, irisY()
	clf := &RandomForestClassifier{NTrees: 10, Criterion: tree.Gini, MTry: MTry{Kind: MTrySqrt}, MinSampleSplit: 2, NWorkers: 1, Seed: 1}
	_ = clf.Fit(context.Background(), X, y)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = clf.Predict(X)
	}
}

var irisX = [][]float32{
	[]float32{3.5, 1.4, 5.1, 0.2},
	[]float32{3.0, 1.4, 4.9, 0.2},
	[]float32{3.2, 1.3, 4.7, 0.2},
	[]float32{3.1, 1.5, 4.6, 0.2},
	[]float32{3.6, 1.4, 5.0, 0.2},
	[]float32{3.9, 1.7, 5.4, 0.4},
	[]float32{3.4, 1.4, 4.6, 0.3},
	[]float32{3.4, 1.5, 5.0, 0.2},
	[]float32{2.9, 1.4, 4.4, 0.2},
	[]float32{3.1, 1.5, 4.9, 0.1},
	[]float32{3.7, 1.5, 5.4, 0.2},
	[]float32{3.4, 1.6, 4.8, 0.2},
	[]float32{3.0, 1.4, 4.8, 0.1},
	[]float32{3.0, 1.1, 4.3, 0.1},
	[]float32{4.0, 1.2, 5.8, 0.2},
	[]float32{4.4, 1.5, 5.7, 0.4},
	[]float32{3.9, 1.3, 5.4, 0.4},
	[]float32{3.5, 1.4, 5.1, 0.3},
	[]float32{3.8, 1.7, 5.7, 0.3},
	[]float32{3.8, 1.5, 5.1, 0.3},
	[]float32{3.4, 1.7, 5.4, 0.2},
	[]float32{3.7, 1.5, 5.1, 0.4},
	[]float32{3.6, 1.0, 4.6, 0.2},
	[]float32{3.3, 1.7, 5.1, 0.5},
	[]float32{3.4, 1.9, 4.8, 0.2},
	[]float32{3.0, 1.6, 5.0, 0.2},
	[]float32{3.4, 1.6, 5.0, 0.4},
	[]float32{3.5, 1.5, 5.2, 0.2},
	[]float32{3.4, 1.4, 5.2, 0.2},
	[]float32{3.2, 1.6, 4.7, 0.2},
	[]float32{3.1, 1.6, 4.8, 0.2},
	[]float32{3.4, 1.5, 5.4, 0.4},
	[]float32{4.1, 1.5, 5.2, 0.1},
	[]float32{4.2, 1.4, 5.5, 0.2},
	[]float32{3.1, 1.5, 4.9, 0.2},
	[]float32{3.2, 1.2, 5.0, 0.2},
	[]float32{3.5, 1.3, 5.5, 0.2},
	[]float32{3.6, 1.4, 4.9, 0.1},
	[]float32{3.0, 1.3, 4.4, 0.2},
	[]float32{3.4, 1.5, 5.1, 0.2},
	[]float32{3.5, 1.3, 5.0, 0.3},
	[]float32{2.3, 1.3, 4.5, 0.3},
	[]float32{3.2, 1.3, 4.4, 0.2},
	[]float32{3.5, 1.6, 5.0, 0.6},
	[]float32{3.8, 1.9, 5.1, 0.4},
	[]float32{3.0, 1.4, 4.8, 0.3},
	[]float32{3.8, 1.6, 5.1, 0.2},
	[]float32{3.2, 1.4, 4.6, 0.2},
	[]float32{3.7, 1.5, 5.3, 0.2},
	[]float32{3.3, 1.4, 5.0, 0.2},
	[]float32{3.2, 4.7, 7.0, 1.4},
	[]float32{3.2, 4.5, 6.4, 1.5},
	[]float32{3.1, 4.9, 6.9, 1.5},
	[]float32{2.3, 4.0, 5.5, 1.3},
	[]float32{2.8, 4.6, 6.5, 1.5},
	[]float32{2.8, 4.5, 5.7, 1.3},
	[]float32{3.3, 4.7, 6.3, 1.6},
	[]float32{2.4, 3.3, 4.9, 1.0},
	[]float32{2.9, 4.6, 6.6, 1.3},
	[]float32{2.7, 3.9, 5.2, 1.4},
	[]float32{2.0, 3.5, 5.0, 1.0},
	[]float32{3.0, 4.2, 5.9, 1.5},
	[]float32{2.2, 4.0, 6.0, 1.0},
	[]float32{2.9, 4.7, 6.1, 1.4},
	[]float32{2.9, 3.6, 5.6, 1.3},
	[]float32{3.1, 4.4, 6.7, 1.4},
	[]float32{3.0, 4.5, 5.6, 1.5},
	[]float32{2.7, 4.1, 5.8, 1.0},
	[]float32{2.2, 4.5, 6.2, 1.5},
	[]float32{2.5, 3.9, 5.6, 1.1},
	[]float32{3.2, 4.8, 5.9, 1.8},
	[]float32{2.8, 4.0, 6.1, 1.3},
	[]float32{2.5, 4.9, 6.3, 1.5},
	[]float32{2.8, 4.7, 6.1, 1.2},
	[]float32{2.9, 4.3, 6.4, 1.3},
	[]float32{3.0, 4.4, 6.6, 1.4},
	[]float32{2.8, 4.8, 6.8, 1.4},
	[]float32{3.0, 5.0, 6.7, 1.7},
	[]float32{2.9, 4.5, 6.0, 1.5},
	[]float32{2.6, 3.5, 5.7, 1.0},
	[]float32{2.4, 3.8, 5.5, 1.1},
	[]float32{2.4, 3.7, 5.5, 1.0},
	[]float32{2.7, 3.9, 5.8, 1.2},
	[]float32{2.7, 5.1, 6.0, 1.6},
	[]float32{3.0, 4.5, 5.4, 1.5},
	[]float32{3.4, 4.5, 6.0, 1.6},
	[]float32{3.1, 4.7, 6.7, 1.5},
	[]float32{2.3, 4.4, 6.3, 1.3},
	[]float32{3.0, 4.1, 5.6, 1.3},
	[]float32{2.5, 4.0, 5.5, 1.3},
	[]float32{2.6, 4.4, 5.5, 1.2},
	[]float32{3.0, 4.6, 6.1, 1.4},
	[]float32{2.6, 4.0, 5.8, 1.2},
	[]float32{2.3, 3.3, 5.0, 1.0},
	[]float32{2.7, 4.2, 5.6, 1.3},
	[]float32{3.0, 4.2, 5.7, 1.2},
	[]float32{2.9, 4.2, 5.7, 1.3},
	[]float32{2.9, 4.3, 6.2, 1.3},
	[]float32{2.5, 3.0, 5.1, 1.1},
	[]float32{2.8, 4.1, 5.7, 1.3},
	[]float32{3.3, 6.0, 6.3, 2.5},
	[]float32{2.7, 5.1, 5.8, 1.9},
	[]float32{3.0, 5.9, 7.1, 2.1},
	[]float32{2.9, 5.6, 6.3, 1.8},
	[]float32{3.0, 5.8, 6.5, 2.2},
	[]float32{3.0, 6.6, 7.6, 2.1},
	[]float32{2.5, 4.5, 4.9, 1.7},
	[]float32{2.9, 6.3, 7.3, 1.8},
	[]float32{2.5, 5.8, 6.7, 1.8},
	[]float32{3.6, 6.1, 7.2, 2.5},
	[]float32{3.2, 5.1, 6.5, 2.0},
	[]float32{2.7, 5.3, 6.4, 1.9},
	[]float32{3.0, 5.5, 6.8, 2.1},
	[]float32{2.5, 5.0, 5.7, 2.0},
	[]float32{2.8, 5.1, 5.8, 2.4},
	[]float32{3.2, 5.3, 6.4, 2.3},
	[]float32{3.0, 5.5, 6.5, 1.8},
	[]float32{3.8, 6.7, 7.7, 2.2},
	[]float32{2.6, 6.9, 7.7, 2.3},
	[]float32{2.2, 5.0, 6.0, 1.5},
	[]float32{3.2, 5.7, 6.9, 2.3},
	[]float32{2.8, 4.9, 5.6, 2.0},
	[]float32{2.8, 6.7, 7.7, 2.0},
	[]float32{2.7, 4.9, 6.3, 1.8},
	[]float32{3.3, 5.7, 6.7, 2.1},
	[]float32{3.2, 6.0, 7.2, 1.8},
	[]float32{2.8, 4.8, 6.2, 1.8},
	[]float32{3.0, 4.9, 6.1, 1.8},
	[]float32{2.8, 5.6, 6.4, 2.1},
	[]float32{3.0, 5.8, 7.2, 1.6},
	[]float32{2.8, 6.1, 7.4, 1.9},
	[]float32{3.8, 6.4, 7.9, 2.0},
	[]float32{2.8, 5.6, 6.4, 2.2},
	[]float32{2.8, 5.1, 6.3, 1.5},
	[]float32{2.6, 5.6, 6.1, 1.4},
	[]float32{3.0, 6.1, 7.7, 2.3},
	[]float32{3.4, 5.6, 6.3, 2.4},
	[]float32{3.1, 5.5, 6.4, 1.8},
	[]float32{3.0, 4.8, 6.0, 1.8},
	[]float32{3.1, 5.4, 6.9, 2.1},
	[]float32{3.1, 5.6, 6.7, 2.4},
	[]float32{3.1, 5.1, 6.9, 2.3},
	[]float32{2.7, 5.1, 5.8, 1.9},
	[]float32{3.2, 5.9, 6.8, 2.3},
	[]float32{3.3, 5.7, 6.7, 2.5},
	[]float32{3.0, 5.2, 6.7, 2.3},
	[]float32{2.5, 5.0, 6.3, 1.9},
	[]float32{3.0, 5.2, 6.5, 2.0},
	[]float32{3.4, 5.4, 6.2, 2.3},
	[]float32{3.0, 5.1, 5.9, 1.8},
}
