package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSetGetDelete(t *testing.T) {
	machine := New()
	table := newTable(machine)

	key := machine.StringValue("name")
	isNew := table.Set(machine, key, Number(1))
	assert.True(t, isNew)
	assert.Equal(t, 1, table.Len())

	val, ok := table.Get(key)
	require.True(t, ok)
	assert.Equal(t, float64(1), val.AsNumber())

	isNew = table.Set(machine, key, Number(2))
	assert.False(t, isNew)
	val, ok = table.Get(key)
	require.True(t, ok)
	assert.Equal(t, float64(2), val.AsNumber())

	deleted := table.Delete(machine, key)
	assert.True(t, deleted)
	assert.Equal(t, 0, table.Len())
	_, ok = table.Get(key)
	assert.False(t, ok)
}

func TestTableGrowsPastLoadFactor(t *testing.T) {
	machine := New()
	table := newTable(machine)
	for i := 0; i < 100; i++ {
		table.Set(machine, Number(float64(i)), Number(float64(i*i)))
	}
	assert.Equal(t, 100, table.Len())
	for i := 0; i < 100; i++ {
		val, ok := table.Get(Number(float64(i)))
		require.True(t, ok)
		assert.Equal(t, float64(i*i), val.AsNumber())
	}
}

func TestTableTombstoneDoesNotBreakProbing(t *testing.T) {
	machine := New()
	table := newTable(machine)
	a := machine.StringValue("a")
	b := machine.StringValue("b")
	c := machine.StringValue("c")

	table.Set(machine, a, Number(1))
	table.Set(machine, b, Number(2))
	table.Set(machine, c, Number(3))

	table.Delete(machine, b)

	val, ok := table.Get(a)
	require.True(t, ok)
	assert.Equal(t, float64(1), val.AsNumber())

	val, ok = table.Get(c)
	require.True(t, ok)
	assert.Equal(t, float64(3), val.AsNumber())

	_, ok = table.Get(b)
	assert.False(t, ok)
}

func TestTableAddAllCopiesMethods(t *testing.T) {
	machine := New()
	src := newTable(machine)
	dst := newTable(machine)

	src.Set(machine, machine.StringValue("speak"), Number(1))
	dst.addAll(machine, src)

	val, ok := dst.Get(machine.StringValue("speak"))
	require.True(t, ok)
	assert.Equal(t, float64(1), val.AsNumber())
}
