package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassembleFunctionListsOpcodesAndConstants(t *testing.T) {
	machine := New()
	fn := newFunction(machine)
	fn.Arity = 0

	one, ok := fn.Chunk.AddConstant(Number(1))
	require.True(t, ok)
	fn.Chunk.Write(byte(OpConstant), 1)
	fn.Chunk.Write(one, 1)
	fn.Chunk.Write(byte(OpReturn), 1)

	var buf bytes.Buffer
	d := NewDisassembler(&buf)
	require.NoError(t, d.DisassembleFunction("main", fn))

	out := buf.String()
	assert.Contains(t, out, "OP_CONSTANT")
	assert.Contains(t, out, "OP_RETURN")
	assert.Contains(t, out, "fun main")
}

func TestDisassembleRecursesIntoNestedFunctionConstants(t *testing.T) {
	machine := New()
	outer := newFunction(machine)
	inner := newFunction(machine)
	inner.Name = machine.internString("helper")

	idx, ok := outer.Chunk.AddConstant(FunctionValue(inner))
	require.True(t, ok)
	outer.Chunk.Write(byte(OpClosure), 1)
	outer.Chunk.Write(idx, 1)
	outer.Chunk.Write(byte(OpReturn), 1)

	var buf bytes.Buffer
	d := NewDisassembler(&buf)
	require.NoError(t, d.DisassembleFunction("main", outer))

	out := buf.String()
	assert.True(t, strings.Contains(out, "fun helper"), "expected nested function section, got:\n%s", out)
}

func TestOpCodeStringsUseUpperSnakeCase(t *testing.T) {
	assert.Equal(t, "OP_CONSTANT", OpConstant.String())
	assert.Equal(t, "OP_GET_SUPER", OpGetSuper.String())
	assert.Equal(t, "OP_SUPER_INVOKE", OpSuperInvoke.String())
	assert.Equal(t, "OP_UNKNOWN", OpCode(255).String())
}
