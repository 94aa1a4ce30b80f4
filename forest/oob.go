package forest

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// classOOBCtr accumulates out-of-bag leaf probability vectors per row
// across trees, the same shape as the teacher's forest/classifier.go
// oobCtr, adapted to sum and later argmax probability vectors instead of
// tallying hard per-tree votes, matching PredictProba's own aggregation.
type classOOBCtr struct {
	probSum [][]float32 // nSamples x nClasses
	voted   []bool
}

func newClassOOBCtr(nSamples, nClasses int) *classOOBCtr {
	probSum := make([][]float32, nSamples)
	for i := range probSum {
		probSum[i] = make([]float32, nClasses)
	}
	return &classOOBCtr{probSum: probSum, voted: make([]bool, nSamples)}
}

func (o *classOOBCtr) update(oobIdx []int32, probs [][]float32) {
	for i, row := range oobIdx {
		for class, p := range probs[i] {
			o.probSum[row][class] += p
		}
		o.voted[row] = true
	}
}

// compute returns the confusion matrix and overall accuracy over rows that
// received at least one out-of-bag vote, argmaxing each row's summed
// probability vector with ties broken toward the lowest class index.
func (o *classOOBCtr) compute(y []int32) ([][]int32, float64) {
	nClasses := len(o.probSum[0])
	confusion := make([][]int32, nClasses)
	for i := range confusion {
		confusion[i] = make([]int32, nClasses)
	}

	var scored, correct int
	for i, actual := range y {
		if !o.voted[i] {
			continue
		}
		var best float32 = -1
		var predicted int32
		for class, p := range o.probSum[i] {
			if p > best {
				best = p
				predicted = int32(class)
			}
		}
		confusion[actual][predicted]++
		scored++
		if predicted == actual {
			correct++
		}
	}

	var accuracy float64
	if scored > 0 {
		accuracy = float64(correct) / float64(scored)
	}
	return confusion, accuracy
}

// regOOBCtr accumulates out-of-bag prediction sums per row, mirroring the
// teacher's forest/regressor.go oobRegCtr.
type regOOBCtr struct {
	sum []float64
	ct  []int
}

func newRegOOBCtr(nSamples int) *regOOBCtr {
	return &regOOBCtr{sum: make([]float64, nSamples), ct: make([]int, nSamples)}
}

func (o *regOOBCtr) update(oobIdx []int32, pred []float32) {
	for i, row := range oobIdx {
		o.sum[row] += float64(pred[i])
		o.ct[row]++
	}
}

// compute returns mean squared error and R-squared over out-of-bag rows,
// using gonum/stat and gonum/floats for the mean and sum-of-squares
// reductions in place of the teacher's oobRegCtr's hand-rolled running
// mean/variance.
func (o *regOOBCtr) compute(y []float32) (mse, rSquared float64) {
	var actual, predicted []float64
	for i := range y {
		if o.ct[i] < 1 {
			continue
		}
		actual = append(actual, float64(y[i]))
		predicted = append(predicted, o.sum[i]/float64(o.ct[i]))
	}
	if len(actual) < 1 {
		return 0, 0
	}

	sqErr := make([]float64, len(actual))
	for i := range actual {
		d := actual[i] - predicted[i]
		sqErr[i] = d * d
	}
	rss := floats.Sum(sqErr)
	mse = rss / float64(len(actual))

	mean := stat.Mean(actual, nil)
	tss := 0.0
	for _, a := range actual {
		d := a - mean
		tss += d * d
	}
	if tss > 0 {
		rSquared = 1.0 - rss/tss
	}
	return mse, rSquared
}
