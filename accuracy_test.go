package arboria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccuracy(t *testing.T) {
	acc, err := Accuracy([]int32{0, 1, 1, 0}, []int32{0, 1, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, acc, 1e-9)
}

func TestAccuracyRejectsLengthMismatch(t *testing.T) {
	_, err := Accuracy([]int32{0, 1}, []int32{0})
	assert.Error(t, err)
}

func TestAccuracyRejectsEmpty(t *testing.T) {
	_, err := Accuracy(nil, nil)
	assert.Error(t, err)
}
