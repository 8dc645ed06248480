package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayGetSetInBounds(t *testing.T) {
	machine := New()
	arr := newArray(machine, []Value{Number(1), Number(2), Number(3)})

	val, err := arr.Get(1)
	require.NoError(t, err)
	assert.Equal(t, float64(2), val.AsNumber())

	require.NoError(t, arr.Set(machine, 1, Number(20)))
	val, err = arr.Get(1)
	require.NoError(t, err)
	assert.Equal(t, float64(20), val.AsNumber())
}

func TestArrayNegativeIndexNormalizes(t *testing.T) {
	machine := New()
	arr := newArray(machine, []Value{Number(1), Number(2), Number(3)})

	val, err := arr.Get(-1)
	require.NoError(t, err)
	assert.Equal(t, float64(3), val.AsNumber())

	val, err = arr.Get(-3)
	require.NoError(t, err)
	assert.Equal(t, float64(1), val.AsNumber())
}

func TestArrayOutOfBoundsErrors(t *testing.T) {
	machine := New()
	arr := newArray(machine, []Value{Number(1)})

	_, err := arr.Get(5)
	assert.Error(t, err)

	_, err = arr.Get(-5)
	assert.Error(t, err)

	err = arr.Set(machine, 5, Number(1))
	assert.Error(t, err)
}

func TestArrayAppendGrowsLength(t *testing.T) {
	machine := New()
	arr := newArray(machine, nil)
	assert.Equal(t, 0, arr.Len())
	arr.Append(Number(1))
	arr.Append(Number(2))
	assert.Equal(t, 2, arr.Len())
	val, err := arr.Get(1)
	require.NoError(t, err)
	assert.Equal(t, float64(2), val.AsNumber())
}
