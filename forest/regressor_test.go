package forest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearForestXY(n int) ([][]float32, []float32) {
	X := make([][]float32, n)
	y := make([]float32, n)
	for i := 0; i < n; i++ {
		X[i] = []float32{float32(i % 23), float32((i * 7) % 11)}
		y[i] = 3*X[i][0] - 2*X[i][1] + 5
	}
	return X, y
}

func TestRandomForestRegressorFitPredict(t *testing.T) {
	X, y := linearForestXY(200)
	reg := &RandomForestRegressor{NTrees: 20, MTry: MTry{Kind: MTryAll}, MinSampleSplit: 2, NWorkers: 1, Seed: 1}
	require.NoError(t, reg.Fit(context.Background(), X, y))

	pred := reg.Predict(X)
	var sse float64
	for i := range pred {
		d := float64(pred[i] - y[i])
		sse += d * d
	}
	mse := sse / float64(len(y))
	assert.Less(t, mse, 5.0)
}

func TestRandomForestRegressorOOBMetrics(t *testing.T) {
	X, y := linearForestXY(200)
	reg := &RandomForestRegressor{NTrees: 40, MTry: MTry{Kind: MTryAll}, MinSampleSplit: 2, NWorkers: 1, Seed: 2, ComputeOOB: true}
	require.NoError(t, reg.Fit(context.Background(), X, y))

	assert.Greater(t, reg.OOBR2, 0.5)
	assert.Greater(t, reg.OOBMSE, 0.0)
}

func TestRandomForestRegressorDeterministicAcrossRuns(t *testing.T) {
	X, y := linearForestXY(100)
	a := &RandomForestRegressor{NTrees: 10, MTry: MTry{Kind: MTryAll}, MinSampleSplit: 2, NWorkers: 1, Seed: 9}
	require.NoError(t, a.Fit(context.Background(), X, y))

	b := &RandomForestRegressor{NTrees: 10, MTry: MTry{Kind: MTryAll}, MinSampleSplit: 2, NWorkers: 1, Seed: 9}
	require.NoError(t, b.Fit(context.Background(), X, y))

	assert.Equal(t, a.Predict(X), b.Predict(X))
}

func TestRandomForestRegressorRejectsMismatchedLengths(t *testing.T) {
	reg := &RandomForestRegressor{NTrees: 5}
	err := reg.Fit(context.Background(), [][]float32{{1}, {2}}, []float32{1})
	assert.Error(t, err)
}
