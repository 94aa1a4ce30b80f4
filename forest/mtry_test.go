package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMTry(t *testing.T) {
	cases := []struct {
		in   string
		kind MTryKind
		ok   bool
	}{
		{"sqrt", MTrySqrt, true},
		{"log2", MTryLog2, true},
		{"log", MTryLog2, true},
		{"all", MTryAll, true},
		{"bogus", 0, false},
	}
	for _, c := range cases {
		m, ok := ParseMTry(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.Equal(t, c.kind, m.Kind, c.in)
		}
	}
}

func TestMTryResolve(t *testing.T) {
	mustResolve := func(m MTry, nFeatures int) int {
		n, err := m.Resolve(nFeatures)
		require.NoError(t, err)
		return n
	}
	assert.Equal(t, 4, mustResolve(MTry{Kind: MTrySqrt}, 16))
	assert.Equal(t, 3, mustResolve(MTry{Kind: MTryLog2}, 8))
	assert.Equal(t, 10, mustResolve(MTry{Kind: MTryAll}, 10))
	assert.Equal(t, 5, mustResolve(MTry{Kind: MTryFixed, N: 5}, 10))
}

func TestMTryResolveRejectsOutOfRangeFixed(t *testing.T) {
	_, err := MTry{Kind: MTryFixed, N: 999}.Resolve(10)
	assert.Error(t, err)

	_, err = MTry{Kind: MTryFixed, N: 0}.Resolve(10)
	assert.Error(t, err)

	_, err = MTry{Kind: MTryFixed, N: -1}.Resolve(10)
	assert.Error(t, err)
}

func TestBootstrapDrawsWithReplacement(t *testing.T) {
	r := newTestRand(123)
	idx, inBag := Bootstrap(r, 10, 0)
	require.Len(t, idx, 10)
	require.Len(t, inBag, 10)

	oob := OutOfBag(inBag)
	for _, id := range oob {
		assert.False(t, inBag[id])
	}
}

func TestBootstrapMaxSamplesOversample(t *testing.T) {
	r := newTestRand(1)
	idx, _ := Bootstrap(r, 10, 25)
	assert.Len(t, idx, 25)
}
