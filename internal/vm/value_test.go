package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFalsey(t *testing.T) {
	assert.True(t, IsFalsey(Nil()))
	assert.True(t, IsFalsey(Bool(false)))
	assert.False(t, IsFalsey(Bool(true)))
	assert.False(t, IsFalsey(Number(0)))
	assert.False(t, IsFalsey(Number(1)))
}

func TestEqualsByKindAndContent(t *testing.T) {
	machine := New()
	assert.True(t, Equals(Nil(), Nil()))
	assert.True(t, Equals(Number(1), Number(1)))
	assert.False(t, Equals(Number(1), Number(2)))
	assert.False(t, Equals(Number(1), Bool(true)))

	a := machine.StringValue("x")
	b := machine.StringValue("x")
	assert.True(t, Equals(a, b), "interned strings with equal content must compare equal")
}

func TestInterningCollapsesEqualStrings(t *testing.T) {
	machine := New()
	a := machine.internString("hello")
	b := machine.internString("hello")
	assert.Same(t, a, b)
}

func TestTypeName(t *testing.T) {
	machine := New()
	assert.Equal(t, "nil", TypeName(Nil()))
	assert.Equal(t, "bool", TypeName(Bool(true)))
	assert.Equal(t, "number", TypeName(Number(1)))
	assert.Equal(t, "string", TypeName(machine.StringValue("x")))
}

func TestFormatNumberDropsTrailingZero(t *testing.T) {
	assert.Equal(t, "1", formatNumber(1))
	assert.Equal(t, "1.5", formatNumber(1.5))
	assert.Equal(t, "-2", formatNumber(-2))
}
