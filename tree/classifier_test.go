package tree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearlySeparableXY() ([][]float32, []int32) {
	X := make([][]float32, 0, 40)
	y := make([]int32, 0, 40)
	for i := 0; i < 20; i++ {
		X = append(X, []float32{float32(i), 0})
		y = append(y, 0)
	}
	for i := 0; i < 20; i++ {
		X = append(X, []float32{float32(i) + 100, 0})
		y = append(y, 1)
	}
	return X, y
}

func rowIndex(n int) []int32 {
	idx := make([]int32, n)
	for i := range idx {
		idx[i] = int32(i)
	}
	return idx
}

func TestDecisionTreeClassifierFitPredict(t *testing.T) {
	X, y := linearlySeparableXY()

	clf := &DecisionTreeClassifier{NClasses: 2, Criterion: Gini, MinSampleSplit: 2, MTry: 2, Seed: 1}
	err := clf.Fit(X, y, rowIndex(len(y)))
	require.NoError(t, err)

	pred := clf.Predict(X)
	correct := 0
	for i := range pred {
		if pred[i] == y[i] {
			correct++
		}
	}
	assert.Equal(t, len(y), correct, "perfectly separable data should fit exactly")
}

func TestDecisionTreeClassifierPredictProbaSumsToOne(t *testing.T) {
	X, y := linearlySeparableXY()
	clf := &DecisionTreeClassifier{NClasses: 2, Criterion: Gini, MinSampleSplit: 2, MTry: 2, Seed: 7}
	require.NoError(t, clf.Fit(X, y, rowIndex(len(y))))

	probs := clf.PredictProba(X[:1])
	var sum float32
	for _, p := range probs[0] {
		sum += p
	}
	assert.InDelta(t, 1.0, float64(sum), 1e-6)
}

func TestDecisionTreeClassifierMaxDepthStopsSplitting(t *testing.T) {
	X, y := linearlySeparableXY()
	clf := &DecisionTreeClassifier{NClasses: 2, Criterion: Gini, MinSampleSplit: 2, MTry: 2, MaxDepth: intPtr(1), Seed: 3}
	require.NoError(t, clf.Fit(X, y, rowIndex(len(y))))

	// depth-1 tree: a root split plus two leaves, nothing deeper.
	for _, n := range clf.Nodes {
		if !n.Leaf {
			assert.True(t, clf.Nodes[n.Left].Leaf)
			assert.True(t, clf.Nodes[n.Right].Leaf)
		}
	}
}

func TestDecisionTreeClassifierVarImpNormalizes(t *testing.T) {
	X, y := linearlySeparableXY()
	clf := &DecisionTreeClassifier{NClasses: 2, Criterion: Entropy, MinSampleSplit: 2, MTry: 2, Seed: 5}
	require.NoError(t, clf.Fit(X, y, rowIndex(len(y))))

	imp := clf.VarImp()
	var total float64
	for _, v := range imp {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-6)
}

func TestDecisionTreeClassifierSaveLoadRoundTrip(t *testing.T) {
	X, y := linearlySeparableXY()
	clf := &DecisionTreeClassifier{NClasses: 2, Criterion: Gini, MinSampleSplit: 2, MTry: 2, Seed: 11}
	require.NoError(t, clf.Fit(X, y, rowIndex(len(y))))

	var buf bytes.Buffer
	require.NoError(t, clf.Save(&buf))

	loaded := &DecisionTreeClassifier{}
	require.NoError(t, loaded.Load(&buf))

	assert.Equal(t, clf.Predict(X), loaded.Predict(X))
}

func TestDecisionTreeClassifierRejectsTooFewClasses(t *testing.T) {
	X, y := linearlySeparableXY()
	clf := &DecisionTreeClassifier{NClasses: 1}
	err := clf.Fit(X, y, rowIndex(len(y)))
	assert.Error(t, err)
}

func TestDecisionTreeClassifierRejectsExplicitZeroMaxDepth(t *testing.T) {
	X, y := linearlySeparableXY()
	clf := &DecisionTreeClassifier{NClasses: 2, Criterion: Gini, MinSampleSplit: 2, MaxDepth: intPtr(0)}
	err := clf.Fit(X, y, rowIndex(len(y)))
	assert.Error(t, err)
}

func TestDecisionTreeClassifierDeterministicAcrossSeedReuse(t *testing.T) {
	X, y := linearlySeparableXY()

	a := &DecisionTreeClassifier{NClasses: 2, Criterion: Gini, MinSampleSplit: 2, MTry: 1, Seed: 99}
	require.NoError(t, a.Fit(X, y, rowIndex(len(y))))

	b := &DecisionTreeClassifier{NClasses: 2, Criterion: Gini, MinSampleSplit: 2, MTry: 1, Seed: 99}
	require.NoError(t, b.Fit(X, y, rowIndex(len(y))))

	assert.Equal(t, a.Nodes, b.Nodes)
}
