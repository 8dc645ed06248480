package vm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayIndexAcceptsWholeNumbers(t *testing.T) {
	i, err := arrayIndex(Number(3))
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	i, err = arrayIndex(Number(-1))
	require.NoError(t, err)
	assert.Equal(t, -1, i)
}

func TestArrayIndexRejectsFractionalAndNonFiniteValues(t *testing.T) {
	for _, n := range []float64{1.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := arrayIndex(Number(n))
		assert.Error(t, err)
	}
}
