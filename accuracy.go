// Package arboria is the public facade over the tree/forest learning
// engine: DecisionTreeClassifier/DecisionTreeRegressor and
// RandomForestClassifier/RandomForestRegressor wrapper types mirroring
// original_source/arboria/_api.py's Python surface, plus the Accuracy
// helper original_source/arboria/_api.py exposes as a free function.
package arboria

import "github.com/fantinsib/arboria/errs"

// Accuracy returns the fraction of yPred entries that match yTrue.
func Accuracy(yTrue, yPred []int32) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, errs.New(errs.InvalidArgument, "accuracy: yTrue and yPred must have equal length, got %d and %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, errs.New(errs.InvalidArgument, "accuracy: yTrue must not be empty")
	}

	var correct int
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}
